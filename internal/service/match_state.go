package service

import (
	"context"

	"card-battle/internal/apperr"
	"card-battle/internal/constants"
	"card-battle/internal/domain"
	"card-battle/internal/repository"

	"github.com/rs/zerolog"
)

// MatchStateMachine closes a match once its last play is recorded.
type MatchStateMachine struct {
	logger zerolog.Logger
}

func NewMatchStateMachine(logger zerolog.Logger) *MatchStateMachine {
	return &MatchStateMachine{logger: logger}
}

// Decide applies the relative majority rule. Draws credit neither side, so
// a single win can decide a match.
func Decide(t domain.Tally) domain.Outcome {
	switch {
	case t.UserWon > t.HouseWon:
		return domain.OutcomeUserWon
	case t.HouseWon > t.UserWon:
		return domain.OutcomeHouseWon
	default:
		return domain.OutcomeDraw
	}
}

// Finalize must run in the transaction that recorded the last play.
func (m *MatchStateMachine) Finalize(ctx context.Context, r *repository.Repos, match domain.Match) (domain.Outcome, error) {
	tally, err := r.Matches.Tally(ctx, match.ID)
	if err != nil {
		return "", err
	}
	if n := tally.UserWon + tally.HouseWon + tally.Draws; n != constants.PlaysPerMatch {
		return "", apperr.New(apperr.CodeInvalidTransition, "match %s has %d plays, needs %d to finish", match.ID, n, constants.PlaysPerMatch)
	}

	outcome := Decide(tally)
	if err := r.Matches.Finish(ctx, match.ID, outcome); err != nil {
		return "", err
	}
	for _, deckID := range []string{match.DeckID, match.HouseDeckID} {
		if err := r.DeckStates.ResetToDeck(ctx, deckID); err != nil {
			return "", err
		}
	}

	m.logger.Info().
		Str("match_id", match.ID).
		Str("outcome", string(outcome)).
		Int("user_won", tally.UserWon).
		Int("house_won", tally.HouseWon).
		Int("draws", tally.Draws).
		Msg("match finished")
	return outcome, nil
}
