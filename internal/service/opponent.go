package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"

	"card-battle/internal/apperr"
	"card-battle/internal/repository"

	"github.com/rs/zerolog"
)

// Source picks an index in [0, n).
type Source interface {
	IntN(n int) int
}

// lockedSource makes a *rand.Rand safe for concurrent handlers.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func newSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// OpponentPolicy chooses the house card for each play.
type OpponentPolicy struct {
	src    Source
	logger zerolog.Logger
}

func NewOpponentPolicy(logger zerolog.Logger) (*OpponentPolicy, error) {
	seed, err := newSeed()
	if err != nil {
		return nil, err
	}
	return NewOpponentPolicyWithSource(NewSeededSource(seed), logger), nil
}

func NewOpponentPolicyWithSource(src Source, logger zerolog.Logger) *OpponentPolicy {
	return &OpponentPolicy{src: src, logger: logger}
}

// SelectCard picks uniformly among the house deck's cards that are not
// discarded. It does not discard the card; the resolver does that together
// with the user's card.
func (p *OpponentPolicy) SelectCard(ctx context.Context, r *repository.Repos, houseDeckID string) (int64, error) {
	available, err := r.DeckStates.AvailableCards(ctx, houseDeckID)
	if err != nil {
		return 0, err
	}
	if len(available) == 0 {
		return 0, apperr.New(apperr.CodeNoCardsAvailable, "house deck %s has no cards left", houseDeckID)
	}

	cardID := available[p.src.IntN(len(available))]
	p.logger.Debug().
		Str("house_deck_id", houseDeckID).
		Int("available", len(available)).
		Int64("card_id", cardID).
		Msg("house card selected")
	return cardID, nil
}
