package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"card-battle/internal/apperr"
	"card-battle/internal/config"
	"card-battle/internal/constants"
	"card-battle/internal/domain"
	"card-battle/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type DeckService struct {
	store  *repository.Store
	cfg    *config.Config
	logger zerolog.Logger
	now    func() time.Time
}

func NewDeckService(store *repository.Store, cfg *config.Config, logger zerolog.Logger) *DeckService {
	return &DeckService{store: store, cfg: cfg, logger: logger, now: time.Now}
}

func validateDeckCards(cardIDs []int64) error {
	if len(cardIDs) != constants.DeckSize {
		return apperr.New(apperr.CodeDeckInvalidSize, "a deck needs exactly %d cards, got %d", constants.DeckSize, len(cardIDs))
	}
	seen := make(map[int64]bool, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return apperr.New(apperr.CodeDeckDuplicateCard, "card %d appears more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// CreateDeck stores a new deck of distinct, existing cards. userName is
// only used the first time the user is seen.
func (s *DeckService) CreateDeck(ctx context.Context, userID, userName, name string, cardIDs []int64) (*domain.Deck, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.CodeDeckNameEmpty, "deck name is required")
	}
	if userID == s.cfg.HouseUserID {
		return nil, apperr.New(apperr.CodeForbidden, "the house user cannot own decks")
	}
	if err := validateDeckCards(cardIDs); err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	deck := domain.Deck{
		ID:        id,
		UserID:    userID,
		Name:      name,
		CardIDs:   append([]int64(nil), cardIDs...),
		CreatedAt: s.now(),
	}

	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		if err := r.Users.Ensure(ctx, userID, userName); err != nil {
			return err
		}

		n, err := r.Decks.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n >= constants.MaxDecksPerUser {
			return apperr.New(apperr.CodeDeckLimitReached, "user %s already owns %d decks", userID, n)
		}

		for _, cardID := range cardIDs {
			if _, err := r.Catalog.Get(ctx, cardID); err != nil {
				return err
			}
		}
		return r.Decks.Create(ctx, deck)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("deck_id", deck.ID).Str("user_id", userID).Msg("deck created")
	return &deck, nil
}

func (s *DeckService) ListDecks(ctx context.Context, userID string) ([]domain.Deck, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.store.Read().Decks.ListByUser(ctx, userID)
}

// ownedDeck must be called inside the transaction that changes the deck.
func ownedDeck(ctx context.Context, r *repository.Repos, userID, deckID string) (domain.Deck, error) {
	deck, err := r.Decks.Get(ctx, deckID)
	if err != nil {
		return domain.Deck{}, err
	}
	if deck.UserID != userID {
		return domain.Deck{}, apperr.New(apperr.CodeForbidden, "deck %s does not belong to user %s", deckID, userID)
	}
	return deck, nil
}

func (s *DeckService) RenameDeck(ctx context.Context, userID, deckID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.New(apperr.CodeDeckNameEmpty, "deck name is required")
	}

	return s.store.InTx(ctx, func(r *repository.Repos) error {
		if _, err := ownedDeck(ctx, r, userID, deckID); err != nil {
			return err
		}
		return r.Decks.Rename(ctx, deckID, name)
	})
}

// DeleteDeck refuses decks that any match, active or finished, points at.
func (s *DeckService) DeleteDeck(ctx context.Context, userID, deckID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	err := s.store.InTx(ctx, func(r *repository.Repos) error {
		if _, err := ownedDeck(ctx, r, userID, deckID); err != nil {
			return err
		}

		n, err := r.Matches.CountByDeck(ctx, deckID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.CodeDeckInUse, "deck %s is used by %d matches", deckID, n)
		}
		return r.Decks.Delete(ctx, deckID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("deck_id", deckID).Str("user_id", userID).Msg("deck deleted")
	return nil
}

// DeckCards returns the deck's card ids by position.
func (s *DeckService) DeckCards(ctx context.Context, deckID string) ([]int64, error) {
	deck, err := s.store.Read().Decks.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return deck.CardIDs, nil
}
