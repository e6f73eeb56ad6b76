package news

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/NethermindEth/chaoschain-reality/core"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultLimit caps List when the caller passes no limit.
const DefaultLimit = 50

// Config selects the backing database.
type Config struct {
	Dialect     Dialect
	SQLitePath  string
	PostgresDSN string
}

// SQLStore keeps the news feed in sqlite or postgres.
type SQLStore struct {
	dialect Dialect
	db      *sql.DB
}

// Open connects, pings and migrates the news database.
func Open(ctx context.Context, cfg Config) (*SQLStore, error) {
	dialect := Dialect(strings.ToLower(strings.TrimSpace(string(cfg.Dialect))))
	if dialect == "" {
		dialect = DialectSQLite
	}

	var driverName, dsn string
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite"
		dsn = strings.TrimSpace(cfg.SQLitePath)
		if dsn == "" {
			dsn = filepath.Join("data", "news.sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	case DialectPostgres:
		driverName = "pgx"
		dsn = strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, errors.New("news: postgres dialect requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported news dialect %q", dialect)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	s := &SQLStore{dialect: dialect, db: db}
	if err := s.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("news database: dialect=%s", dialect)
	return s, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) bind(pos int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (s *SQLStore) insertQuery(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = s.bind(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

func (s *SQLStore) applyMigrations(ctx context.Context) error {
	create := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at BIGINT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate schema migrations: %w", err)
	}
	rows.Close()

	files, err := fs.Glob(migrationFS, fmt.Sprintf("migrations/%s/*.sql", s.dialect))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		base := filepath.Base(file)
		if applied[base] {
			continue
		}
		sqlBytes, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		q := s.insertQuery("schema_migrations", []string{"version", "applied_at"})
		if _, err := tx.ExecContext(ctx, q, base, time.Now().UTC().Unix()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// Append stores one headline. Missing id and timestamp are filled in.
func (s *SQLStore) Append(ctx context.Context, item core.NewsItem) error {
	if item.ShowID == "" || item.Headline == "" {
		return fmt.Errorf("news item needs a show id and a headline")
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	ids := item.AgentIDs
	if ids == nil {
		ids = []string{}
	}
	agentIDs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal agent ids: %w", err)
	}

	q := s.insertQuery("news_items", []string{"id", "show_id", "kind", "headline", "body", "agent_ids", "tx_hash", "created_at"})
	_, err = s.db.ExecContext(ctx, q,
		item.ID, item.ShowID, item.Kind, item.Headline, item.Body, string(agentIDs), item.TxHash, item.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("insert news item: %w", err)
	}
	return nil
}

// List returns a show's newest items first.
func (s *SQLStore) List(ctx context.Context, showID string, limit int) ([]core.NewsItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := fmt.Sprintf(`SELECT id, show_id, kind, headline, body, agent_ids, tx_hash, created_at
		FROM news_items WHERE show_id = %s ORDER BY created_at DESC, id DESC LIMIT %s`, s.bind(1), s.bind(2))
	rows, err := s.db.QueryContext(ctx, q, showID, limit)
	if err != nil {
		return nil, fmt.Errorf("query news items: %w", err)
	}
	defer rows.Close()

	var out []core.NewsItem
	for rows.Next() {
		var (
			item     core.NewsItem
			agentIDs string
			created  int64
		)
		if err := rows.Scan(&item.ID, &item.ShowID, &item.Kind, &item.Headline, &item.Body, &agentIDs, &item.TxHash, &created); err != nil {
			return nil, fmt.Errorf("scan news item: %w", err)
		}
		if err := json.Unmarshal([]byte(agentIDs), &item.AgentIDs); err != nil {
			log.Printf("news item %s: bad agent ids %q: %v", item.ID, agentIDs, err)
		}
		item.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news items: %w", err)
	}
	return out, nil
}
