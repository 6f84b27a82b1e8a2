package service

import (
	"context"
	"fmt"
	"time"

	"card-battle/internal/apperr"
	"card-battle/internal/config"
	"card-battle/internal/constants"
	"card-battle/internal/domain"
	"card-battle/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// txRunner is the slice of repository.Store the resolver needs.
type txRunner interface {
	InTx(ctx context.Context, fn func(r *repository.Repos) error) error
}

// PlayResolver turns one submitted card into a recorded play.
type PlayResolver struct {
	store    txRunner
	opponent *OpponentPolicy
	machine  *MatchStateMachine
	cfg      *config.Config
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPlayResolver(store *repository.Store, opponent *OpponentPolicy, machine *MatchStateMachine, cfg *config.Config, logger zerolog.Logger) *PlayResolver {
	return &PlayResolver{
		store:    store,
		opponent: opponent,
		machine:  machine,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ResolvePlay runs the whole play in one transaction. A Conflict aborts the
// attempt and the play is retried from the precondition checks; any other
// error is returned as is.
func (s *PlayResolver) ResolvePlay(ctx context.Context, matchID, userID string, cardID int64) (*domain.PlayResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(s.cfg.PlayMaxRetries, retry.NewExponential(s.cfg.PlayRetryBase))

	var result *domain.PlayResult
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.store.InTx(ctx, func(r *repository.Repos) error {
			res, err := s.apply(ctx, r, matchID, userID, cardID)
			if err != nil {
				return err
			}
			if res.Play.Turn == constants.PlaysPerMatch {
				match, err := r.Matches.Get(ctx, matchID)
				if err != nil {
					return err
				}
				outcome, err := s.machine.Finalize(ctx, r, match)
				if err != nil {
					return err
				}
				res.MatchStatus = domain.MatchFinished
				res.MatchOutcome = &outcome
			}
			result = res
			return nil
		})
		if apperr.IsCode(err, apperr.CodeConflict) {
			s.logger.Warn().Err(err).Str("match_id", matchID).Int("attempt", attempt).Msg("play conflicted, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("match_id", matchID).Int64("card_id", cardID).Msg("play rejected")
		return nil, err
	}

	s.logger.Info().
		Str("match_id", matchID).
		Int("play_number", result.Play.Turn).
		Int64("user_card_id", cardID).
		Int64("house_card_id", result.Play.HouseCardID).
		Str("outcome", string(result.Play.Outcome)).
		Msg("play resolved")
	return result, nil
}

// apply checks the preconditions, scores the play, records it and discards
// both cards. It leaves finalization to the caller.
func (s *PlayResolver) apply(ctx context.Context, r *repository.Repos, matchID, userID string, cardID int64) (*domain.PlayResult, error) {
	match, err := r.Matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.UserID != userID {
		return nil, apperr.New(apperr.CodeForbidden, "match %s does not belong to user %s", matchID, userID)
	}
	if match.Status != domain.MatchActive {
		return nil, apperr.New(apperr.CodeMatchFinished, "match %s is finished", matchID)
	}

	status, err := r.DeckStates.CardState(ctx, match.DeckID, cardID)
	if apperr.IsCode(err, apperr.CodeCardNotInDeck) {
		return nil, apperr.Wrap(apperr.CodeInvalidCard, err, "card %d is not part of deck %s", cardID, match.DeckID)
	}
	if err != nil {
		return nil, err
	}
	if status != domain.CardInHand {
		return nil, apperr.New(apperr.CodeCardAlreadyPlayed, "card %d is %s", cardID, status)
	}

	houseCardID, err := s.opponent.SelectCard(ctx, r, match.HouseDeckID)
	if apperr.IsCode(err, apperr.CodeNoCardsAvailable) {
		return nil, apperr.Wrap(apperr.CodeOpponentUnavailable, err, "no opponent card for match %s", matchID)
	}
	if err != nil {
		return nil, err
	}

	sc, err := s.score(ctx, r, cardID, houseCardID)
	if err != nil {
		return nil, err
	}

	if err := r.Matches.AdvancePlayCount(ctx, matchID, match.PlayCount); err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	play := domain.Play{
		ID:          id,
		MatchID:     matchID,
		Turn:        match.PlayCount + 1,
		UserCardID:  cardID,
		HouseCardID: houseCardID,
		UserAttack:  float64(sc.user) / constants.AttackScale,
		HouseAttack: float64(sc.house) / constants.AttackScale,
		Outcome:     sc.outcome(),
		CreatedAt:   s.now(),
	}
	if err := r.Matches.AddPlay(ctx, play); err != nil {
		return nil, err
	}
	if err := r.DeckStates.MarkDiscarded(ctx, match.DeckID, cardID); err != nil {
		return nil, err
	}
	if err := r.DeckStates.MarkDiscarded(ctx, match.HouseDeckID, houseCardID); err != nil {
		return nil, err
	}

	return &domain.PlayResult{
		Play:              play,
		UserHadAdvantage:  sc.userAdvantage,
		HouseHadAdvantage: sc.houseAdvantage,
		MatchStatus:       domain.MatchActive,
	}, nil
}

// score holds both attacks in tenths.
type score struct {
	user           int
	house          int
	userAdvantage  bool
	houseAdvantage bool
}

func (sc score) outcome() domain.Outcome {
	switch {
	case sc.user > sc.house:
		return domain.OutcomeUserWon
	case sc.user < sc.house:
		return domain.OutcomeHouseWon
	default:
		return domain.OutcomeDraw
	}
}

// applyAdvantage scales both attacks to tenths. The user's advantage wins
// when both flags are set.
func applyAdvantage(userAttack, houseAttack int, userBeats, houseBeats bool) score {
	sc := score{user: userAttack * constants.AttackScale, house: houseAttack * constants.AttackScale}
	switch {
	case userBeats:
		sc.user = userAttack * constants.AdvantageFactor
		sc.userAdvantage = true
	case houseBeats:
		sc.house = houseAttack * constants.AdvantageFactor
		sc.houseAdvantage = true
	}
	return sc
}

// score looks up the house's advantage only when the user has none.
func (s *PlayResolver) score(ctx context.Context, r *repository.Repos, userCardID, houseCardID int64) (score, error) {
	userAttack, err := r.Catalog.Attack(ctx, userCardID)
	if err != nil {
		return score{}, err
	}
	houseAttack, err := r.Catalog.Attack(ctx, houseCardID)
	if err != nil {
		return score{}, err
	}
	userType, err := r.Catalog.Type(ctx, userCardID)
	if err != nil {
		return score{}, err
	}
	houseType, err := r.Catalog.Type(ctx, houseCardID)
	if err != nil {
		return score{}, err
	}

	userBeats, err := r.Catalog.Beats(ctx, userType, houseType)
	if err != nil {
		return score{}, err
	}
	var houseBeats bool
	if !userBeats {
		houseBeats, err = r.Catalog.Beats(ctx, houseType, userType)
		if err != nil {
			return score{}, err
		}
	}
	return applyAdvantage(userAttack, houseAttack, userBeats, houseBeats), nil
}
