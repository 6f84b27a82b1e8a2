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

type DeckRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewDeckRepository(queries *db.Queries, logger zerolog.Logger) *DeckRepository {
	return &DeckRepository{queries: queries, logger: logger}
}

// Create stores the deck and one in_deck row per card, in the given order.
func (r *DeckRepository) Create(ctx context.Context, deck domain.Deck) error {
	err := r.queries.InsertDeck(ctx, db.Deck{
		ID:        deck.ID,
		UserID:    deck.UserID,
		Name:      deck.Name,
		CreatedAt: deck.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return storageErr(err, "failed to insert deck")
	}

	for i, cardID := range deck.CardIDs {
		err := r.queries.InsertDeckCard(ctx, db.DeckCard{
			DeckID:   deck.ID,
			CardID:   cardID,
			Position: int64(i),
			Status:   string(domain.CardInDeck),
		})
		if err != nil {
			return storageErr(err, "failed to insert deck card")
		}
	}
	return nil
}

func (r *DeckRepository) Get(ctx context.Context, deckID string) (domain.Deck, error) {
	row, err := r.queries.GetDeck(ctx, deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deck{}, apperr.New(apperr.CodeDeckNotFound, "deck %s not found", deckID)
	}
	if err != nil {
		return domain.Deck{}, storageErr(err, "failed to get deck")
	}

	cards, err := r.queries.ListDeckCards(ctx, deckID)
	if err != nil {
		return domain.Deck{}, storageErr(err, "failed to list deck cards")
	}
	return toDomainDeck(row, cards), nil
}

func (r *DeckRepository) ListByUser(ctx context.Context, userID string) ([]domain.Deck, error) {
	rows, err := r.queries.ListDecksByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "failed to list decks")
	}

	decks := make([]domain.Deck, len(rows))
	for i, row := range rows {
		cards, err := r.queries.ListDeckCards(ctx, row.ID)
		if err != nil {
			return nil, storageErr(err, "failed to list deck cards")
		}
		decks[i] = toDomainDeck(row, cards)
	}
	return decks, nil
}

func (r *DeckRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	n, err := r.queries.CountDecksByUser(ctx, userID)
	if err != nil {
		return 0, storageErr(err, "failed to count decks")
	}
	return int(n), nil
}

func (r *DeckRepository) Rename(ctx context.Context, deckID, name string) error {
	n, err := r.queries.RenameDeck(ctx, deckID, name)
	if err != nil {
		return storageErr(err, "failed to rename deck")
	}
	if n == 0 {
		return apperr.New(apperr.CodeDeckNotFound, "deck %s not found", deckID)
	}
	return nil
}

// Delete removes the deck and its card rows. Callers check match usage first.
func (r *DeckRepository) Delete(ctx context.Context, deckID string) error {
	if err := r.queries.DeleteDeckCards(ctx, deckID); err != nil {
		return storageErr(err, "failed to delete deck cards")
	}
	n, err := r.queries.DeleteDeck(ctx, deckID)
	if err != nil {
		return storageErr(err, "failed to delete deck")
	}
	if n == 0 {
		return apperr.New(apperr.CodeDeckNotFound, "deck %s not found", deckID)
	}
	return nil
}

func toDomainDeck(row db.Deck, cards []db.DeckCard) domain.Deck {
	ids := make([]int64, len(cards))
	for i, c := range cards {
		ids[i] = c.CardID
	}
	return domain.Deck{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		CardIDs:   ids,
		CreatedAt: time.UnixMilli(row.CreatedAt),
	}
}
