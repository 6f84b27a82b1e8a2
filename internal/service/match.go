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
	"golang.org/x/sync/errgroup"
)

type MatchService struct {
	store  *repository.Store
	cfg    *config.Config
	logger zerolog.Logger
	now    func() time.Time
}

func NewMatchService(store *repository.Store, cfg *config.Config, logger zerolog.Logger) *MatchService {
	return &MatchService{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// OpenMatch deals the user's deck and a fresh copy of the house deck and
// starts a match. Each match owns its house copy, so concurrent matches never
// draw from the same card-state rows. The returned summary has no plays yet.
func (s *MatchService) OpenMatch(ctx context.Context, userID, deckID string) (*domain.MatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if deckID == s.cfg.HouseDeckID {
		return nil, apperr.New(apperr.CodeForbidden, "the house deck cannot be played by users")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	var summary domain.MatchSummary
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		deck, err := r.Decks.Get(ctx, deckID)
		if err != nil {
			return err
		}
		if deck.UserID != userID || deck.UserID == s.cfg.HouseUserID {
			return apperr.New(apperr.CodeForbidden, "deck %s does not belong to user %s", deckID, userID)
		}

		active, err := r.Matches.ActiveForDeck(ctx, deckID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.New(apperr.CodeDeckInUse, "deck %s already has active match %s", deckID, active.ID)
		}

		houseDeckID, err := s.copyHouseDeck(ctx, r, id)
		if err != nil {
			return err
		}
		if err := r.DeckStates.InitializeForMatch(ctx, deckID, houseDeckID); err != nil {
			return err
		}

		match := domain.Match{
			ID:          id,
			UserID:      userID,
			DeckID:      deckID,
			HouseDeckID: houseDeckID,
			CreatedAt:   s.now(),
			Status:      domain.MatchActive,
		}
		if err := r.Matches.Create(ctx, match); err != nil {
			return err
		}

		hand, err := r.DeckStates.Hand(ctx, deckID)
		if err != nil {
			return err
		}
		summary = domain.MatchSummary{Match: match, Hand: hand}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID).Str("deck_id", deckID).Msg("failed to open match")
		return nil, err
	}

	s.logger.Info().
		Str("match_id", id).
		Str("user_id", userID).
		Str("deck_id", deckID).
		Int("hand_size", len(summary.Hand)).
		Msg("match opened")
	return &summary, nil
}

// copyHouseDeck clones the configured house deck under <house>-<matchID>,
// owned by the house user and in the template's card order.
func (s *MatchService) copyHouseDeck(ctx context.Context, r *repository.Repos, matchID string) (string, error) {
	template, err := r.Decks.Get(ctx, s.cfg.HouseDeckID)
	if apperr.IsCode(err, apperr.CodeDeckNotFound) {
		return "", apperr.Wrap(apperr.CodeOpponentUnavailable, err, "house deck %s is not seeded", s.cfg.HouseDeckID)
	}
	if err != nil {
		return "", err
	}

	houseDeck := domain.Deck{
		ID:        fmt.Sprintf("%s-%s", template.ID, matchID),
		UserID:    template.UserID,
		Name:      template.Name,
		CardIDs:   template.CardIDs,
		CreatedAt: s.now(),
	}
	if err := r.Decks.Create(ctx, houseDeck); err != nil {
		return "", err
	}
	return houseDeck.ID, nil
}

// ownedMatch loads a match the user may read. Finished matches are allowed.
func (s *MatchService) ownedMatch(ctx context.Context, userID, matchID string) (domain.Match, error) {
	match, err := s.store.Read().Matches.Get(ctx, matchID)
	if err != nil {
		return domain.Match{}, err
	}
	if match.UserID != userID {
		return domain.Match{}, apperr.New(apperr.CodeForbidden, "match %s does not belong to user %s", matchID, userID)
	}
	return match, nil
}

func (s *MatchService) Hand(ctx context.Context, userID, matchID string) ([]domain.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	match, err := s.ownedMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	return s.store.Read().DeckStates.Hand(ctx, match.DeckID)
}

func (s *MatchService) Summary(ctx context.Context, userID, matchID string) (*domain.MatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	match, err := s.ownedMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	read := s.store.Read()
	g, gCtx := errgroup.WithContext(ctx)
	var plays []domain.Play
	var hand []domain.Card

	g.Go(func() error {
		var err error
		plays, err = read.Matches.Plays(gCtx, matchID)
		return err
	})

	g.Go(func() error {
		var err error
		hand, err = read.DeckStates.Hand(gCtx, match.DeckID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to load match summary")
		return nil, err
	}

	return &domain.MatchSummary{Match: match, Plays: plays, Hand: hand}, nil
}
