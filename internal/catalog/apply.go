package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"card-battle/internal/config"
	"card-battle/internal/constants"
	"card-battle/internal/db"
	"card-battle/internal/domain"

	"github.com/rs/zerolog"
)

// Load picks the seed source: CATALOG_PATH, then CATALOG_URL, then the
// embedded document.
func Load(ctx context.Context, cfg *config.Config, fetcher *Fetcher, logger zerolog.Logger) (*Seed, error) {
	switch {
	case cfg.CatalogPath != "":
		logger.Info().Str("path", cfg.CatalogPath).Msg("loading catalog seed from file")
		data, err := os.ReadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog seed: %w", err)
		}
		return Parse(data)

	case cfg.CatalogURL != "":
		logger.Info().Str("url", cfg.CatalogURL).Msg("fetching catalog seed")
		data, err := fetcher.Fetch(ctx, cfg.CatalogURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog seed: %w", err)
		}
		return Parse(data)

	default:
		logger.Debug().Msg("using embedded catalog seed")
		return Embedded()
	}
}

// Apply writes the seed in one transaction. Existing rows are kept, so
// applying the same seed twice is a no-op.
func Apply(ctx context.Context, sqlDB *sql.DB, queries *db.Queries, seed *Seed, cfg *config.Config, logger zerolog.Logger) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := queries.WithTx(tx)

	for _, t := range seed.Types {
		if err := qtx.UpsertCardType(ctx, db.CardType{ID: t.ID, Name: t.Name}); err != nil {
			return fmt.Errorf("failed to upsert type %s: %w", t.Name, err)
		}
	}
	for _, p := range seed.Pairs() {
		if err := qtx.UpsertAdvantage(ctx, p.Attacker, p.Defender); err != nil {
			return fmt.Errorf("failed to upsert advantage %d->%d: %w", p.Attacker, p.Defender, err)
		}
	}
	for _, c := range seed.Cards {
		err := qtx.UpsertCard(ctx, db.Card{
			ID:     c.ID,
			Name:   c.Name,
			Attack: c.Attack,
			TypeID: seed.TypeID(c.Type),
			Image:  c.Image,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert card %d: %w", c.ID, err)
		}
	}

	if err := qtx.UpsertUser(ctx, db.User{ID: cfg.HouseUserID, Name: seed.House.UserName}); err != nil {
		return fmt.Errorf("failed to upsert house user: %w", err)
	}
	err = qtx.UpsertDeck(ctx, db.Deck{
		ID:        cfg.HouseDeckID,
		UserID:    cfg.HouseUserID,
		Name:      seed.House.DeckName,
		CreatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert house deck: %w", err)
	}
	for i, id := range seed.House.Cards {
		err := qtx.InsertDeckCard(ctx, db.DeckCard{
			DeckID:   cfg.HouseDeckID,
			CardID:   id,
			Position: int64(i),
			Status:   string(domain.CardInDeck),
		})
		if err != nil {
			return fmt.Errorf("failed to insert house deck card %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	logger.Info().
		Int("types", len(seed.Types)).
		Int("cards", len(seed.Cards)).
		Str("house_deck_id", cfg.HouseDeckID).
		Msg("catalog seeded")
	return nil
}

// Bootstrap loads and applies the seed at startup.
func Bootstrap(sqlDB *sql.DB, queries *db.Queries, cfg *config.Config, fetcher *Fetcher, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CatalogTimeout)
	defer cancel()

	seed, err := Load(ctx, cfg, fetcher, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load catalog seed")
		return err
	}
	return Apply(ctx, sqlDB, queries, seed, cfg, logger)
}
