package repository

import (
	"context"
	"database/sql"
	"errors"

	"card-battle/internal/apperr"
	"card-battle/internal/db"
	"card-battle/internal/domain"

	"github.com/rs/zerolog"
)

// DeckStateRepository tracks where each card of a deck is during a match.
// Legal edges: in_deck -> in_hand -> discarded -> (reset) -> in_hand.
type DeckStateRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewDeckStateRepository(queries *db.Queries, logger zerolog.Logger) *DeckStateRepository {
	return &DeckStateRepository{queries: queries, logger: logger}
}

// InitializeForMatch deals both decks. Cards already discarded stay
// discarded so a partially consumed deck is resumed rather than refilled.
func (r *DeckStateRepository) InitializeForMatch(ctx context.Context, deckID, houseDeckID string) error {
	for _, id := range []string{deckID, houseDeckID} {
		n, err := r.queries.DealDeck(ctx, id)
		if err != nil {
			return storageErr(err, "failed to deal deck")
		}
		r.logger.Debug().Str("deck_id", id).Int64("dealt", n).Msg("deck dealt for match")
	}
	return nil
}

func (r *DeckStateRepository) CardState(ctx context.Context, deckID string, cardID int64) (domain.CardStatus, error) {
	status, err := r.queries.GetDeckCardStatus(ctx, deckID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.New(apperr.CodeCardNotInDeck, "card %d is not in deck %s", cardID, deckID)
	}
	if err != nil {
		return "", storageErr(err, "failed to get card state")
	}
	return domain.CardStatus(status), nil
}

// MarkDiscarded moves a card from in_hand to discarded.
func (r *DeckStateRepository) MarkDiscarded(ctx context.Context, deckID string, cardID int64) error {
	n, err := r.queries.DiscardDeckCard(ctx, deckID, cardID)
	if err != nil {
		return storageErr(err, "failed to discard card")
	}
	if n == 1 {
		return nil
	}

	status, err := r.CardState(ctx, deckID, cardID)
	if err != nil {
		return err
	}
	return apperr.New(apperr.CodeInvalidTransition, "card %d of deck %s is %s, not %s", cardID, deckID, status, domain.CardInHand)
}

// AvailableCards lists every card that is not discarded, in deck order.
func (r *DeckStateRepository) AvailableCards(ctx context.Context, deckID string) ([]int64, error) {
	ids, err := r.queries.ListAvailableCardIDs(ctx, deckID)
	if err != nil {
		return nil, storageErr(err, "failed to list available cards")
	}
	return ids, nil
}

// ResetToDeck returns discarded cards to the hand. Resetting a deck with no
// discarded cards changes nothing.
func (r *DeckStateRepository) ResetToDeck(ctx context.Context, deckID string) error {
	n, err := r.queries.ResetDiscarded(ctx, deckID)
	if err != nil {
		return storageErr(err, "failed to reset deck")
	}
	r.logger.Debug().Str("deck_id", deckID).Int64("reset", n).Msg("deck reset")
	return nil
}

// Hand lists the deck's cards currently in_hand.
func (r *DeckStateRepository) Hand(ctx context.Context, deckID string) ([]domain.Card, error) {
	rows, err := r.queries.ListDeckCardsByStatus(ctx, deckID, string(domain.CardInHand))
	if err != nil {
		return nil, storageErr(err, "failed to list hand")
	}

	cards := make([]domain.Card, len(rows))
	for i, row := range rows {
		cards[i] = toDomainCard(row)
	}
	return cards, nil
}

func (r *DeckStateRepository) States(ctx context.Context, deckID string) ([]domain.DeckCardState, error) {
	rows, err := r.queries.ListDeckCards(ctx, deckID)
	if err != nil {
		return nil, storageErr(err, "failed to list deck card states")
	}

	states := make([]domain.DeckCardState, len(rows))
	for i, row := range rows {
		states[i] = domain.DeckCardState{
			DeckID: row.DeckID,
			CardID: row.CardID,
			Status: domain.CardStatus(row.Status),
		}
	}
	return states, nil
}
