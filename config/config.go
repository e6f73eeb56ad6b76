package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from .env and the environment.
type Config struct {
	APIPort int

	RPCURL          string
	ContractAddress string
	AdminPrivateKey string
	ChainID         int64
	ChainTimeout    time.Duration

	OpenAIAPIKey string
	AIBaseURL    string
	AIModel      string
	AITimeout    time.Duration

	NATSURL      string
	EmbeddedNATS bool

	DataDir       string
	DBDialect     string
	DBSQLitePath  string
	DBPostgresDSN string

	EigenDAAuthPK     string
	EigenDADisperser  string
	ScheduleFile      string
	SchedulerDisabled bool
}

// UseChain reports whether enough is configured to talk to a real contract.
func (c *Config) UseChain() bool {
	return c.RPCURL != "" && c.ContractAddress != "" && c.AdminPrivateKey != ""
}

// Load reads the given .env files (default ".env") and then the environment.
// A missing .env file is only a warning.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("Warning: .env file not found")
	}

	c := &Config{
		RPCURL:           env("RPC_URL", ""),
		ContractAddress:  env("CONTRACT_ADDRESS", ""),
		AdminPrivateKey:  env("ADMIN_PRIVATE_KEY", ""),
		OpenAIAPIKey:     env("OPENAI_API_KEY", ""),
		AIBaseURL:        env("AI_BASE_URL", ""),
		AIModel:          env("AI_MODEL", ""),
		NATSURL:          env("NATS_URL", ""),
		DataDir:          env("DATA_DIR", "./data"),
		DBDialect:        env("DB_DIALECT", "sqlite"),
		DBSQLitePath:     env("DB_SQLITE_PATH", ""),
		DBPostgresDSN:    env("DB_POSTGRES_DSN", env("DATABASE_URL", "")),
		EigenDAAuthPK:    env("EIGENDA_AUTH_PK", ""),
		EigenDADisperser: env("EIGENDA_DISPERSER", "disperser-holesky.eigenda.xyz:443"),
		ScheduleFile:     env("SCHEDULE_FILE", ""),
	}

	var err error
	if c.APIPort, err = envInt("API_PORT", 3000); err != nil {
		return nil, err
	}
	chainID, err := envInt("CHAIN_ID", 0)
	if err != nil {
		return nil, err
	}
	c.ChainID = int64(chainID)
	if c.ChainTimeout, err = envDuration("CHAIN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if c.AITimeout, err = envDuration("AI_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if c.EmbeddedNATS, err = envBool("EMBEDDED_NATS", false); err != nil {
		return nil, err
	}
	if c.SchedulerDisabled, err = envBool("SCHEDULER_DISABLED", false); err != nil {
		return nil, err
	}
	if c.DBSQLitePath == "" {
		c.DBSQLitePath = c.DataDir + "/news.sqlite"
	}

	if !c.UseChain() {
		log.Println("Warning: RPC_URL, CONTRACT_ADDRESS or ADMIN_PRIVATE_KEY not set, using in-memory chain")
	}
	if c.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, using random decisions")
	}
	return c, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
