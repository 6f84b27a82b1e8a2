package db

import "context"

const insertDeck = `INSERT INTO decks (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertDeck(ctx context.Context, arg Deck) error {
	_, err := q.db.ExecContext(ctx, insertDeck, arg.ID, arg.UserID, arg.Name, arg.CreatedAt)
	return err
}

const upsertDeck = `
INSERT INTO decks (id, user_id, name, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

func (q *Queries) UpsertDeck(ctx context.Context, arg Deck) error {
	_, err := q.db.ExecContext(ctx, upsertDeck, arg.ID, arg.UserID, arg.Name, arg.CreatedAt)
	return err
}

const insertDeckCard = `
INSERT INTO deck_cards (deck_id, card_id, position, status) VALUES (?, ?, ?, ?)
ON CONFLICT (deck_id, card_id) DO NOTHING`

func (q *Queries) InsertDeckCard(ctx context.Context, arg DeckCard) error {
	_, err := q.db.ExecContext(ctx, insertDeckCard, arg.DeckID, arg.CardID, arg.Position, arg.Status)
	return err
}

const getDeck = `SELECT id, user_id, name, created_at FROM decks WHERE id = ?`

func (q *Queries) GetDeck(ctx context.Context, id string) (Deck, error) {
	var d Deck
	err := q.db.QueryRowContext(ctx, getDeck, id).Scan(&d.ID, &d.UserID, &d.Name, &d.CreatedAt)
	return d, err
}

const listDecksByUser = `
SELECT id, user_id, name, created_at FROM decks
WHERE user_id = ?
ORDER BY created_at, id`

func (q *Queries) ListDecksByUser(ctx context.Context, userID string) ([]Deck, error) {
	rows, err := q.db.QueryContext(ctx, listDecksByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const countDecksByUser = `SELECT COUNT(*) FROM decks WHERE user_id = ?`

func (q *Queries) CountDecksByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDecksByUser, userID).Scan(&n)
	return n, err
}

const renameDeck = `UPDATE decks SET name = ? WHERE id = ?`

func (q *Queries) RenameDeck(ctx context.Context, id, name string) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, renameDeck, name, id))
}

const deleteDeckCards = `DELETE FROM deck_cards WHERE deck_id = ?`

func (q *Queries) DeleteDeckCards(ctx context.Context, deckID string) error {
	_, err := q.db.ExecContext(ctx, deleteDeckCards, deckID)
	return err
}

const deleteDeck = `DELETE FROM decks WHERE id = ?`

func (q *Queries) DeleteDeck(ctx context.Context, id string) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, deleteDeck, id))
}

const listDeckCards = `
SELECT deck_id, card_id, position, status FROM deck_cards
WHERE deck_id = ?
ORDER BY position, card_id`

func (q *Queries) ListDeckCards(ctx context.Context, deckID string) ([]DeckCard, error) {
	rows, err := q.db.QueryContext(ctx, listDeckCards, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DeckCard
	for rows.Next() {
		var dc DeckCard
		if err := rows.Scan(&dc.DeckID, &dc.CardID, &dc.Position, &dc.Status); err != nil {
			return nil, err
		}
		items = append(items, dc)
	}
	return items, rows.Err()
}

const getDeckCardStatus = `SELECT status FROM deck_cards WHERE deck_id = ? AND card_id = ?`

func (q *Queries) GetDeckCardStatus(ctx context.Context, deckID string, cardID int64) (string, error) {
	var status string
	err := q.db.QueryRowContext(ctx, getDeckCardStatus, deckID, cardID).Scan(&status)
	return status, err
}

const dealDeck = `
UPDATE deck_cards SET status = 'in_hand'
WHERE deck_id = ? AND status = 'in_deck'`

// DealDeck moves every in_deck card of the deck to in_hand; discarded and
// already-dealt cards are left alone.
func (q *Queries) DealDeck(ctx context.Context, deckID string) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, dealDeck, deckID))
}

const discardDeckCard = `
UPDATE deck_cards SET status = 'discarded'
WHERE deck_id = ? AND card_id = ? AND status = 'in_hand'`

func (q *Queries) DiscardDeckCard(ctx context.Context, deckID string, cardID int64) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, discardDeckCard, deckID, cardID))
}

const resetDiscarded = `
UPDATE deck_cards SET status = 'in_hand'
WHERE deck_id = ? AND status = 'discarded'`

func (q *Queries) ResetDiscarded(ctx context.Context, deckID string) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, resetDiscarded, deckID))
}

const listAvailableCardIDs = `
SELECT card_id FROM deck_cards
WHERE deck_id = ? AND status <> 'discarded'
ORDER BY position, card_id`

func (q *Queries) ListAvailableCardIDs(ctx context.Context, deckID string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listAvailableCardIDs, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const listDeckCardsByStatus = `
SELECT ` + cardColumns + `
FROM deck_cards dc
JOIN cards c ON c.id = dc.card_id
JOIN card_types t ON t.id = c.type_id
WHERE dc.deck_id = ? AND dc.status = ?
ORDER BY dc.position, c.id`

func (q *Queries) ListDeckCardsByStatus(ctx context.Context, deckID, status string) ([]Card, error) {
	rows, err := q.db.QueryContext(ctx, listDeckCardsByStatus, deckID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
