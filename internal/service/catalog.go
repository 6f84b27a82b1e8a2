package service

import (
	"context"

	"card-battle/internal/constants"
	"card-battle/internal/domain"
	"card-battle/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CatalogService serves the public, read-only endpoints.
type CatalogService struct {
	store  *repository.Store
	logger zerolog.Logger
}

func NewCatalogService(store *repository.Store, logger zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) ListCards(ctx context.Context, typeName, nameLike string) ([]domain.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.store.Read().Catalog.List(ctx, typeName, nameLike)
}

func (s *CatalogService) ListTypes(ctx context.Context) ([]domain.CardType, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.store.Read().Catalog.Types(ctx)
}

// Statistics aggregates finished matches per user and overall.
func (s *CatalogService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	read := s.store.Read()
	g, gCtx := errgroup.WithContext(ctx)
	var stats domain.Statistics

	g.Go(func() error {
		var err error
		stats.Users, err = read.Stats.ByUser(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		stats.Totals, err = read.Stats.Totals(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to load statistics")
		return nil, err
	}

	s.logger.Debug().Int("users", len(stats.Users)).Msg("statistics loaded")
	return &stats, nil
}
