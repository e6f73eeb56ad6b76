package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NethermindEth/chaoschain-reality/actions"
	"github.com/NethermindEth/chaoschain-reality/ai"
	"github.com/NethermindEth/chaoschain-reality/api"
	"github.com/NethermindEth/chaoschain-reality/api/handlers"
	"github.com/NethermindEth/chaoschain-reality/chain"
	"github.com/NethermindEth/chaoschain-reality/communication"
	"github.com/NethermindEth/chaoschain-reality/config"
	"github.com/NethermindEth/chaoschain-reality/da"
	"github.com/NethermindEth/chaoschain-reality/engine"
	"github.com/NethermindEth/chaoschain-reality/insights"
	"github.com/NethermindEth/chaoschain-reality/metrics"
	"github.com/NethermindEth/chaoschain-reality/news"
	"github.com/NethermindEth/chaoschain-reality/scheduler"
	"github.com/NethermindEth/chaoschain-reality/storage"
)

func main() {
	envFile := flag.String("env", ".env", "Environment file")
	apiPort := flag.Int("api-port", 0, "API server port (overrides API_PORT)")
	scheduleFile := flag.String("schedule", "", "Show schedule YAML (overrides SCHEDULE_FILE)")
	noScheduler := flag.Bool("no-scheduler", false, "Only serve the API, never run cycles on a timer")
	embeddedNATS := flag.Bool("embedded-nats", false, "Start an in-process NATS server")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiPort != 0 {
		cfg.APIPort = *apiPort
	}
	if *scheduleFile != "" {
		cfg.ScheduleFile = *scheduleFile
	}
	cfg.SchedulerDisabled = cfg.SchedulerDisabled || *noScheduler
	cfg.EmbeddedNATS = cfg.EmbeddedNATS || *embeddedNATS

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	schedule := config.DemoSchedule()
	if cfg.ScheduleFile != "" {
		if schedule, err = config.LoadSchedule(cfg.ScheduleFile); err != nil {
			log.Fatalf("Failed to load schedule: %v", err)
		}
	} else {
		log.Println("Warning: SCHEDULE_FILE not set, using the demo show")
	}

	m := metrics.New()

	gateway, closeGateway := openGateway(ctx, cfg, schedule)
	defer closeGateway()

	var llm ai.LLM
	if cfg.OpenAIAPIKey != "" {
		llmCfg := ai.DefaultLLMConfig()
		if cfg.AIModel != "" {
			llmCfg.Model = cfg.AIModel
		}
		openai, err := ai.NewOpenAILLM(ai.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.AIBaseURL, Timeout: cfg.AITimeout, LLM: llmCfg})
		if err != nil {
			log.Fatalf("Failed to create decision client: %v", err)
		}
		llm = openai
	}
	catalog := actions.NewCatalog(nil)
	decider := ai.NewClient(llm, catalog, nil)

	db, err := storage.Open(storage.DefaultConfig(cfg.DataDir), "cycles")
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer db.Close()
	cycles := storage.NewCycleRepository(db)

	feed, err := news.Open(ctx, news.Config{
		Dialect:     news.Dialect(cfg.DBDialect),
		SQLitePath:  cfg.DBSQLitePath,
		PostgresDSN: cfg.DBPostgresDSN,
	})
	if err != nil {
		log.Fatalf("Failed to open news store: %v", err)
	}
	defer feed.Close()

	messenger := connectNATS(cfg)
	if messenger != nil {
		defer messenger.Close()
	}
	ws := communication.NewWebSocketManager(m.SetWebSocketClients)
	defer ws.Close()
	hub := communication.NewHub(ws, messenger)

	eng := engine.New(gateway, decider, catalog, engine.Options{
		Ledger:  cycles,
		News:    feed,
		Events:  hub,
		Metrics: m,
	})

	var archive *da.Service
	if cfg.EigenDAAuthPK != "" {
		daCfg := da.DefaultConfig(cfg.EigenDAAuthPK)
		if host, port, err := net.SplitHostPort(cfg.EigenDADisperser); err == nil {
			daCfg.Host, daCfg.Port = host, port
		}
		client, err := da.NewEigenClient(daCfg)
		if err != nil {
			log.Fatalf("Failed to create EigenDA client: %v", err)
		}
		archive = da.NewService(client, cycles, da.Options{News: feed, Index: db, Events: hub})
		log.Printf("EigenDA archive enabled via %s:%s", daCfg.Host, daCfg.Port)
	} else {
		log.Println("Warning: EIGENDA_AUTH_PK not set, archive routes disabled")
	}

	h := handlers.New(eng, handlers.Deps{
		News:    feed,
		Cycles:  cycles,
		Recaps:  insights.NewExtractor(feed, decider),
		Archive: archive,
		WS:      ws,
	})
	server := api.NewServer(cfg.APIPort, h, m)

	if !cfg.SchedulerDisabled {
		go scheduler.New(eng, schedule.Shows).Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API shutdown: %v", err)
		}
	}
}

// openGateway dials the contract when RPC settings are present and otherwise
// seeds an in-memory chain from the schedule.
func openGateway(ctx context.Context, cfg *config.Config, schedule *config.Schedule) (chain.Gateway, func()) {
	if cfg.UseChain() {
		eth, err := chain.DialEth(ctx, chain.EthConfig{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			AdminPrivateKey: cfg.AdminPrivateKey,
			ChainID:         cfg.ChainID,
			Timeout:         cfg.ChainTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to connect to chain: %v", err)
		}
		return eth, eth.Close
	}
	mem := chain.NewMemoryGateway()
	for _, sh := range schedule.Shows {
		mem.AddShow(sh.ID, !sh.Inactive, sh.SeedAgents()...)
		log.Printf("In-memory show %s seeded with %d agent(s)", sh.ID, len(sh.Agents))
	}
	return mem, func() {}
}

// connectNATS returns nil when no broker is configured; events then only reach websocket clients.
func connectNATS(cfg *config.Config) *communication.Messenger {
	url := cfg.NATSURL
	if cfg.EmbeddedNATS {
		ns, err := communication.StartEmbeddedServer(-1)
		if err != nil {
			log.Fatalf("Failed to start embedded NATS: %v", err)
		}
		url = ns.ClientURL()
		log.Printf("Embedded NATS listening on %s", url)
	}
	if url == "" {
		return nil
	}
	messenger, err := communication.NewMessenger(url, fmt.Sprintf("showrunner-%d", os.Getpid()))
	if err != nil {
		log.Printf("Warning: NATS unavailable at %s, events stay local: %v", url, err)
		return nil
	}
	return messenger
}
