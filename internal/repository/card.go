package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"card-battle/internal/apperr"
	"card-battle/internal/db"
	"card-battle/internal/domain"

	"github.com/rs/zerolog"
)

// CardRepository is the read-only card catalog.
type CardRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewCardRepository(queries *db.Queries, logger zerolog.Logger) *CardRepository {
	return &CardRepository{queries: queries, logger: logger}
}

func (r *CardRepository) Get(ctx context.Context, cardID int64) (domain.Card, error) {
	row, err := r.queries.GetCard(ctx, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, apperr.New(apperr.CodeCardNotFound, "card %d not found", cardID)
	}
	if err != nil {
		return domain.Card{}, storageErr(err, "failed to get card")
	}
	return toDomainCard(row), nil
}

func (r *CardRepository) Attack(ctx context.Context, cardID int64) (int, error) {
	card, err := r.Get(ctx, cardID)
	if err != nil {
		return 0, err
	}
	return card.Attack, nil
}

func (r *CardRepository) Type(ctx context.Context, cardID int64) (int64, error) {
	card, err := r.Get(ctx, cardID)
	if err != nil {
		return 0, err
	}
	return card.TypeID, nil
}

// Beats reports whether attacker has the advantage over defender.
func (r *CardRepository) Beats(ctx context.Context, attackerTypeID, defenderTypeID int64) (bool, error) {
	ok, err := r.queries.HasAdvantage(ctx, attackerTypeID, defenderTypeID)
	if err != nil {
		return false, storageErr(err, "failed to check type advantage")
	}
	return ok, nil
}

// List filters by type name (exact, case-insensitive) and partial card name.
func (r *CardRepository) List(ctx context.Context, typeName, nameLike string) ([]domain.Card, error) {
	params := db.ListCardsParams{NameLike: strings.TrimSpace(nameLike)}

	if typeName = strings.TrimSpace(typeName); typeName != "" {
		t, err := r.queries.GetCardTypeByName(ctx, typeName)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeTypeNotFound, "type %q not found", typeName)
		}
		if err != nil {
			return nil, storageErr(err, "failed to get card type")
		}
		params.TypeID = sql.NullInt64{Int64: t.ID, Valid: true}
	}

	rows, err := r.queries.ListCards(ctx, params)
	if err != nil {
		return nil, storageErr(err, "failed to list cards")
	}

	cards := make([]domain.Card, len(rows))
	for i, row := range rows {
		cards[i] = toDomainCard(row)
	}
	return cards, nil
}

func (r *CardRepository) Types(ctx context.Context) ([]domain.CardType, error) {
	rows, err := r.queries.ListCardTypes(ctx)
	if err != nil {
		return nil, storageErr(err, "failed to list card types")
	}

	types := make([]domain.CardType, len(rows))
	for i, row := range rows {
		types[i] = domain.CardType{ID: row.ID, Name: row.Name}
	}
	return types, nil
}

func toDomainCard(row db.Card) domain.Card {
	return domain.Card{
		ID:       row.ID,
		Name:     row.Name,
		Attack:   int(row.Attack),
		TypeID:   row.TypeID,
		TypeName: row.TypeName,
		Image:    row.Image,
	}
}
