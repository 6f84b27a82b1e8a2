package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"card-battle/internal/apperr"
	"card-battle/internal/db"
	"card-battle/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewMatchRepository(queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{queries: queries, logger: logger}
}

func (r *MatchRepository) Create(ctx context.Context, match domain.Match) error {
	err := r.queries.InsertMatch(ctx, db.Match{
		ID:          match.ID,
		UserID:      match.UserID,
		DeckID:      match.DeckID,
		HouseDeckID: match.HouseDeckID,
		CreatedAt:   match.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return storageErr(err, "failed to insert match")
	}
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID string) (domain.Match, error) {
	row, err := r.queries.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Match{}, apperr.New(apperr.CodeMatchNotFound, "match %s not found", matchID)
	}
	if err != nil {
		return domain.Match{}, storageErr(err, "failed to get match")
	}
	return toDomainMatch(row), nil
}

// ActiveForDeck returns the deck's active match, or nil when there is none.
func (r *MatchRepository) ActiveForDeck(ctx context.Context, deckID string) (*domain.Match, error) {
	row, err := r.queries.GetActiveMatchByDeck(ctx, deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "failed to get active match")
	}
	m := toDomainMatch(row)
	return &m, nil
}

func (r *MatchRepository) CountByDeck(ctx context.Context, deckID string) (int, error) {
	n, err := r.queries.CountMatchesByDeck(ctx, deckID)
	if err != nil {
		return 0, storageErr(err, "failed to count matches")
	}
	return int(n), nil
}

// AdvancePlayCount bumps the counter from expected to expected+1 or reports
// a Conflict when the row moved underneath us.
func (r *MatchRepository) AdvancePlayCount(ctx context.Context, matchID string, expected int) error {
	n, err := r.queries.AdvancePlayCount(ctx, matchID, int64(expected))
	if err != nil {
		return storageErr(err, "failed to advance play count")
	}
	if n == 0 {
		return apperr.New(apperr.CodeConflict, "match %s changed concurrently", matchID)
	}
	return nil
}

func (r *MatchRepository) Finish(ctx context.Context, matchID string, outcome domain.Outcome) error {
	n, err := r.queries.FinishMatch(ctx, matchID, string(outcome))
	if err != nil {
		return storageErr(err, "failed to finish match")
	}
	if n == 0 {
		return apperr.New(apperr.CodeConflict, "match %s already finished", matchID)
	}
	return nil
}

func (r *MatchRepository) AddPlay(ctx context.Context, play domain.Play) error {
	err := r.queries.InsertPlay(ctx, db.Play{
		ID:          play.ID,
		MatchID:     play.MatchID,
		Turn:        int64(play.Turn),
		UserCardID:  play.UserCardID,
		HouseCardID: play.HouseCardID,
		UserAttack:  play.UserAttack,
		HouseAttack: play.HouseAttack,
		Outcome:     string(play.Outcome),
		CreatedAt:   play.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return storageErr(err, "failed to insert play")
	}
	return nil
}

// Plays returns the match's plays in turn order.
func (r *MatchRepository) Plays(ctx context.Context, matchID string) ([]domain.Play, error) {
	rows, err := r.queries.ListPlaysByMatch(ctx, matchID)
	if err != nil {
		return nil, storageErr(err, "failed to list plays")
	}

	plays := make([]domain.Play, len(rows))
	for i, row := range rows {
		plays[i] = domain.Play{
			ID:          row.ID,
			MatchID:     row.MatchID,
			Turn:        int(row.Turn),
			UserCardID:  row.UserCardID,
			HouseCardID: row.HouseCardID,
			UserAttack:  row.UserAttack,
			HouseAttack: row.HouseAttack,
			Outcome:     domain.Outcome(row.Outcome),
			CreatedAt:   time.UnixMilli(row.CreatedAt),
		}
	}
	return plays, nil
}

func (r *MatchRepository) Tally(ctx context.Context, matchID string) (domain.Tally, error) {
	t, err := r.queries.TallyPlayOutcomes(ctx, matchID)
	if err != nil {
		return domain.Tally{}, storageErr(err, "failed to tally plays")
	}
	return domain.Tally{UserWon: int(t.UserWon), HouseWon: int(t.HouseWon), Draws: int(t.Draw)}, nil
}

func toDomainMatch(row db.Match) domain.Match {
	m := domain.Match{
		ID:          row.ID,
		UserID:      row.UserID,
		DeckID:      row.DeckID,
		HouseDeckID: row.HouseDeckID,
		CreatedAt:   time.UnixMilli(row.CreatedAt),
		Status:      domain.MatchStatus(row.Status),
		PlayCount:   int(row.PlayCount),
	}
	if row.Outcome.Valid {
		o := domain.Outcome(row.Outcome.String)
		m.Outcome = &o
	}
	return m
}
