package db

import "context"

const matchColumns = `id, user_id, deck_id, house_deck_id, created_at, status, outcome, play_count`

func scanMatch(row interface{ Scan(...any) error }) (Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.UserID, &m.DeckID, &m.HouseDeckID, &m.CreatedAt, &m.Status, &m.Outcome, &m.PlayCount)
	return m, err
}

const insertMatch = `
INSERT INTO matches (id, user_id, deck_id, house_deck_id, created_at, status, play_count)
VALUES (?, ?, ?, ?, ?, 'active', 0)`

func (q *Queries) InsertMatch(ctx context.Context, arg Match) error {
	_, err := q.db.ExecContext(ctx, insertMatch, arg.ID, arg.UserID, arg.DeckID, arg.HouseDeckID, arg.CreatedAt)
	return err
}

const getMatch = `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`

func (q *Queries) GetMatch(ctx context.Context, id string) (Match, error) {
	return scanMatch(q.db.QueryRowContext(ctx, getMatch, id))
}

const getActiveMatchByDeck = `
SELECT ` + matchColumns + ` FROM matches
WHERE deck_id = ? AND status = 'active'
LIMIT 1`

func (q *Queries) GetActiveMatchByDeck(ctx context.Context, deckID string) (Match, error) {
	return scanMatch(q.db.QueryRowContext(ctx, getActiveMatchByDeck, deckID))
}

const countMatchesByDeck = `SELECT COUNT(*) FROM matches WHERE deck_id = ?`

func (q *Queries) CountMatchesByDeck(ctx context.Context, deckID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMatchesByDeck, deckID).Scan(&n)
	return n, err
}

const advancePlayCount = `
UPDATE matches SET play_count = play_count + 1
WHERE id = ? AND status = 'active' AND play_count = ?`

// AdvancePlayCount is a compare-and-set on the match's play counter. Zero
// rows affected means another writer got there first.
func (q *Queries) AdvancePlayCount(ctx context.Context, id string, expected int64) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, advancePlayCount, id, expected))
}

const finishMatch = `
UPDATE matches SET status = 'finished', outcome = ?
WHERE id = ? AND status = 'active'`

func (q *Queries) FinishMatch(ctx context.Context, id, outcome string) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, finishMatch, outcome, id))
}

const insertPlay = `
INSERT INTO plays (id, match_id, turn, user_card_id, house_card_id, user_attack, house_attack, outcome, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertPlay(ctx context.Context, arg Play) error {
	_, err := q.db.ExecContext(ctx, insertPlay,
		arg.ID,
		arg.MatchID,
		arg.Turn,
		arg.UserCardID,
		arg.HouseCardID,
		arg.UserAttack,
		arg.HouseAttack,
		arg.Outcome,
		arg.CreatedAt,
	)
	return err
}

const listPlaysByMatch = `
SELECT id, match_id, turn, user_card_id, house_card_id, user_attack, house_attack, outcome, created_at
FROM plays
WHERE match_id = ?
ORDER BY turn`

func (q *Queries) ListPlaysByMatch(ctx context.Context, matchID string) ([]Play, error) {
	rows, err := q.db.QueryContext(ctx, listPlaysByMatch, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Play
	for rows.Next() {
		var p Play
		if err := rows.Scan(
			&p.ID,
			&p.MatchID,
			&p.Turn,
			&p.UserCardID,
			&p.HouseCardID,
			&p.UserAttack,
			&p.HouseAttack,
			&p.Outcome,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const tallyPlayOutcomes = `
SELECT
    COALESCE(SUM(outcome = 'user_won'), 0),
    COALESCE(SUM(outcome = 'house_won'), 0),
    COALESCE(SUM(outcome = 'draw'), 0)
FROM plays
WHERE match_id = ?`

func (q *Queries) TallyPlayOutcomes(ctx context.Context, matchID string) (OutcomeTally, error) {
	var t OutcomeTally
	err := q.db.QueryRowContext(ctx, tallyPlayOutcomes, matchID).Scan(&t.UserWon, &t.HouseWon, &t.Draw)
	return t, err
}

const tallyFinishedByUser = `
SELECT
    m.user_id,
    u.name,
    SUM(m.outcome = 'user_won'),
    SUM(m.outcome = 'house_won'),
    SUM(m.outcome = 'draw')
FROM matches m
JOIN users u ON u.id = m.user_id
WHERE m.status = 'finished'
GROUP BY m.user_id, u.name
ORDER BY u.name, m.user_id`

func (q *Queries) TallyFinishedByUser(ctx context.Context) ([]UserOutcomeTally, error) {
	rows, err := q.db.QueryContext(ctx, tallyFinishedByUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []UserOutcomeTally
	for rows.Next() {
		var t UserOutcomeTally
		if err := rows.Scan(&t.UserID, &t.Name, &t.UserWon, &t.HouseWon, &t.Draw); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const tallyFinished = `
SELECT
    COALESCE(SUM(outcome = 'user_won'), 0),
    COALESCE(SUM(outcome = 'house_won'), 0),
    COALESCE(SUM(outcome = 'draw'), 0)
FROM matches
WHERE status = 'finished'`

func (q *Queries) TallyFinished(ctx context.Context) (OutcomeTally, error) {
	var t OutcomeTally
	err := q.db.QueryRowContext(ctx, tallyFinished).Scan(&t.UserWon, &t.HouseWon, &t.Draw)
	return t, err
}

