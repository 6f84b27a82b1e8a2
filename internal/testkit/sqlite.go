// Package testkit builds a migrated, seeded SQLite store for tests.
package testkit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"card-battle/internal/catalog"
	"card-battle/internal/config"
	"card-battle/internal/database"
	"card-battle/internal/db"
	"card-battle/internal/repository"

	"github.com/rs/zerolog"
)

const (
	HouseUserID = "house"
	HouseDeckID = "house"
)

// Env is one isolated database with the embedded catalog applied.
type Env struct {
	DB      *sql.DB
	Queries *db.Queries
	Store   *repository.Store
	Config  *config.Config
	Seed    *catalog.Seed
}

func NewEnv(t testing.TB) *Env {
	t.Helper()

	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		AuthSecret:     "test-secret",
		HouseUserID:    HouseUserID,
		HouseDeckID:    HouseDeckID,
		PlayMaxRetries: 3,
		PlayRetryBase:  time.Millisecond,
	}

	seed, err := catalog.Embedded()
	if err != nil {
		t.Fatalf("load embedded seed: %v", err)
	}
	queries := db.New(sqlDB)
	if err := catalog.Apply(context.Background(), sqlDB, queries, seed, cfg, logger); err != nil {
		t.Fatalf("apply seed: %v", err)
	}

	return &Env{
		DB:      sqlDB,
		Queries: queries,
		Store:   repository.NewStore(sqlDB, queries, logger),
		Config:  cfg,
		Seed:    seed,
	}
}

// CardOfType returns the id of the first seeded card with the given type.
func (e *Env) CardOfType(t testing.TB, typeName string) int64 {
	t.Helper()
	for _, c := range e.Seed.Cards {
		if c.Type == typeName {
			return c.ID
		}
	}
	t.Fatalf("no seeded card of type %s", typeName)
	return 0
}
