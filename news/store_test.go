package news

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NethermindEth/chaoschain-reality/core"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(context.Background(), Config{Dialect: DialectSQLite, SQLitePath: filepath.Join(t.TempDir(), "news.sqlite")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndListNewestFirst(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	headlines := []string{"Alice betrayed Bob", "Bob spread gossip about Alice", "Bob was eliminated"}
	for i, h := range headlines {
		err := s.Append(ctx, core.NewsItem{
			ShowID:    "1",
			Kind:      "drama",
			Headline:  h,
			AgentIDs:  []string{"3", "7"},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Append(ctx, core.NewsItem{ShowID: "2", Kind: "drama", Headline: "elsewhere"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	items, err := s.List(ctx, "1", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Headline != "Bob was eliminated" || items[1].Headline != headlines[1] {
		t.Fatalf("items = %+v", items)
	}
	if len(items[0].AgentIDs) != 2 || items[0].ID == "" || !items[0].CreatedAt.Equal(base.Add(2*time.Second)) {
		t.Fatalf("item fields = %+v", items[0])
	}
}

func TestAppendRejectsEmptyHeadline(t *testing.T) {
	s := openSQLite(t)
	if err := s.Append(context.Background(), core.NewsItem{ShowID: "1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.sqlite")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), Config{SQLitePath: path})
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if n != 1 {
			t.Fatalf("schema_migrations rows = %d, want 1", n)
		}
		s.Close()
	}
}

func TestUnsupportedDialect(t *testing.T) {
	if _, err := Open(context.Background(), Config{Dialect: "mysql"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Open(context.Background(), Config{Dialect: DialectPostgres}); err == nil {
		t.Fatalf("expected error for missing DSN")
	}
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("NEWS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NEWS_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), Config{Dialect: DialectPostgres, PostgresDSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	showID := "pg-" + time.Now().Format("150405.000000")
	if err := s.Append(context.Background(), core.NewsItem{ShowID: showID, Kind: "test", Headline: "hello"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	items, err := s.List(context.Background(), showID, 10)
	if err != nil || len(items) != 1 {
		t.Fatalf("List = %+v, %v", items, err)
	}
}
