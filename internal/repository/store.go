package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"card-battle/internal/apperr"
	"card-battle/internal/db"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Repos bundles the repositories bound to one query scope, either the pool
// or a single transaction.
type Repos struct {
	Catalog    *CardRepository
	DeckStates *DeckStateRepository
	Decks      *DeckRepository
	Matches    *MatchRepository
	Users      *UserRepository
	Stats      *StatsRepository
}

func newRepos(q *db.Queries, logger zerolog.Logger) *Repos {
	return &Repos{
		Catalog:    NewCardRepository(q, logger),
		DeckStates: NewDeckStateRepository(q, logger),
		Decks:      NewDeckRepository(q, logger),
		Matches:    NewMatchRepository(q, logger),
		Users:      NewUserRepository(q, logger),
		Stats:      NewStatsRepository(q, logger),
	}
}

// Store is the unit of work: it owns the pool and hands out repositories
// scoped to a transaction.
type Store struct {
	db      *sql.DB
	queries *db.Queries
	logger  zerolog.Logger
	read    *Repos
}

func NewStore(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *Store {
	return &Store{
		db:      sqlDB,
		queries: queries,
		logger:  logger,
		read:    newRepos(queries, logger),
	}
}

// Read returns repositories outside any transaction.
func (s *Store) Read() *Repos {
	return s.read
}

// InTx runs fn in one transaction. Any error from fn rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(r *Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(newRepos(s.queries.WithTx(tx), s.logger)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err, "failed to commit transaction")
	}
	return nil
}

// storageErr classifies a driver error. Lock contention and uniqueness or
// check violations are conflicts that a fresh transaction may not hit.
func storageErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return apperr.Wrap(apperr.CodeConflict, err, "%s", msg)
		case sqlite3.ErrConstraint:
			switch sqlErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintCheck:
				return apperr.Wrap(apperr.CodeConflict, err, "%s", msg)
			}
		}
	}
	return apperr.Wrap(apperr.CodeStorage, err, "%s", msg)
}
