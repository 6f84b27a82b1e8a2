package db

import (
	"context"
	"database/sql"
	"strings"
)

const cardColumns = `c.id, c.name, c.attack, c.type_id, t.name, c.image`

func scanCard(row interface{ Scan(...any) error }) (Card, error) {
	var c Card
	err := row.Scan(&c.ID, &c.Name, &c.Attack, &c.TypeID, &c.TypeName, &c.Image)
	return c, err
}

const getCard = `
SELECT ` + cardColumns + `
FROM cards c
JOIN card_types t ON t.id = c.type_id
WHERE c.id = ?`

func (q *Queries) GetCard(ctx context.Context, id int64) (Card, error) {
	return scanCard(q.db.QueryRowContext(ctx, getCard, id))
}

type ListCardsParams struct {
	TypeID   sql.NullInt64
	NameLike string // literal substring; empty matches everything
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const listCards = `
SELECT ` + cardColumns + `
FROM cards c
JOIN card_types t ON t.id = c.type_id
WHERE (?1 IS NULL OR c.type_id = ?1)
  AND (?2 = '' OR c.name LIKE '%' || ?2 || '%' ESCAPE '\')
ORDER BY c.id`

func (q *Queries) ListCards(ctx context.Context, arg ListCardsParams) ([]Card, error) {
	rows, err := q.db.QueryContext(ctx, listCards, arg.TypeID, likeEscaper.Replace(arg.NameLike))
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

const listCardTypes = `SELECT id, name FROM card_types ORDER BY id`

func (q *Queries) ListCardTypes(ctx context.Context) ([]CardType, error) {
	rows, err := q.db.QueryContext(ctx, listCardTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CardType
	for rows.Next() {
		var t CardType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const getCardTypeByName = `SELECT id, name FROM card_types WHERE name = ? COLLATE NOCASE`

func (q *Queries) GetCardTypeByName(ctx context.Context, name string) (CardType, error) {
	var t CardType
	err := q.db.QueryRowContext(ctx, getCardTypeByName, name).Scan(&t.ID, &t.Name)
	return t, err
}

const hasAdvantage = `
SELECT EXISTS (
    SELECT 1 FROM type_advantages
    WHERE attacker_type_id = ? AND defender_type_id = ?
)`

func (q *Queries) HasAdvantage(ctx context.Context, attackerTypeID, defenderTypeID int64) (bool, error) {
	var ok bool
	err := q.db.QueryRowContext(ctx, hasAdvantage, attackerTypeID, defenderTypeID).Scan(&ok)
	return ok, err
}

const upsertUser = `INSERT INTO users (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`

func (q *Queries) UpsertUser(ctx context.Context, arg User) error {
	_, err := q.db.ExecContext(ctx, upsertUser, arg.ID, arg.Name)
	return err
}

const getUser = `SELECT id, name FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUser, id).Scan(&u.ID, &u.Name)
	return u, err
}

const upsertCardType = `INSERT INTO card_types (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`

func (q *Queries) UpsertCardType(ctx context.Context, arg CardType) error {
	_, err := q.db.ExecContext(ctx, upsertCardType, arg.ID, arg.Name)
	return err
}

const upsertCard = `
INSERT INTO cards (id, name, attack, type_id, image) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

func (q *Queries) UpsertCard(ctx context.Context, arg Card) error {
	_, err := q.db.ExecContext(ctx, upsertCard, arg.ID, arg.Name, arg.Attack, arg.TypeID, arg.Image)
	return err
}

const upsertAdvantage = `
INSERT INTO type_advantages (attacker_type_id, defender_type_id) VALUES (?, ?)
ON CONFLICT DO NOTHING`

func (q *Queries) UpsertAdvantage(ctx context.Context, attackerTypeID, defenderTypeID int64) error {
	_, err := q.db.ExecContext(ctx, upsertAdvantage, attackerTypeID, defenderTypeID)
	return err
}
