package repository

import (
	"context"

	"card-battle/internal/db"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewUserRepository(queries *db.Queries, logger zerolog.Logger) *UserRepository {
	return &UserRepository{queries: queries, logger: logger}
}

// Ensure records an authenticated user the first time they own something.
// The name defaults to the id; an existing row is never overwritten.
func (r *UserRepository) Ensure(ctx context.Context, userID, name string) error {
	if name == "" {
		name = userID
	}
	if err := r.queries.UpsertUser(ctx, db.User{ID: userID, Name: name}); err != nil {
		return storageErr(err, "failed to upsert user")
	}
	return nil
}
