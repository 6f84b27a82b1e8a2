package repository

import (
	"context"

	"card-battle/internal/db"
	"card-battle/internal/domain"

	"github.com/rs/zerolog"
)

// StatsRepository reads finished matches only.
type StatsRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewStatsRepository(queries *db.Queries, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{queries: queries, logger: logger}
}

func (r *StatsRepository) ByUser(ctx context.Context) ([]domain.UserStats, error) {
	rows, err := r.queries.TallyFinishedByUser(ctx)
	if err != nil {
		return nil, storageErr(err, "failed to tally matches by user")
	}

	stats := make([]domain.UserStats, len(rows))
	for i, row := range rows {
		stats[i] = domain.UserStats{
			UserID: row.UserID,
			Name:   row.Name,
			Won:    int(row.UserWon),
			Lost:   int(row.HouseWon),
			Drawn:  int(row.Draw),
		}
	}
	return stats, nil
}

func (r *StatsRepository) Totals(ctx context.Context) (domain.UserStats, error) {
	t, err := r.queries.TallyFinished(ctx)
	if err != nil {
		return domain.UserStats{}, storageErr(err, "failed to tally matches")
	}
	return domain.UserStats{Won: int(t.UserWon), Lost: int(t.HouseWon), Drawn: int(t.Draw)}, nil
}
