package service

import (
	"context"
	"testing"

	"card-battle/internal/domain"
	"card-battle/internal/repository"
	"card-battle/internal/testkit"

	"github.com/rs/zerolog"
)

// firstSource always picks the first available card, so the house plays its
// deck in position order: Charmander, Squirtle, Bulbasaur, Geodude, Diglett.
type firstSource struct{}

func (firstSource) IntN(int) int { return 0 }

type fixture struct {
	env      *testkit.Env
	resolver *PlayResolver
	decks    *DeckService
	matches  *MatchService
	catalog  *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testkit.NewEnv(t)
	logger := zerolog.Nop()
	return &fixture{
		env:      env,
		resolver: NewPlayResolver(env.Store, NewOpponentPolicyWithSource(firstSource{}, logger), NewMatchStateMachine(logger), env.Config, logger),
		decks:    NewDeckService(env.Store, env.Config, logger),
		matches:  NewMatchService(env.Store, env.Config, logger),
		catalog:  NewCatalogService(env.Store, logger),
	}
}

// openMatch creates a deck for userID and opens a match on it.
func (f *fixture) openMatch(t *testing.T, userID string, cards []int64) domain.Match {
	t.Helper()
	ctx := context.Background()
	deck, err := f.decks.CreateDeck(ctx, userID, "", "mazo", cards)
	if err != nil {
		t.Fatalf("CreateDeck() error = %v", err)
	}
	summary, err := f.matches.OpenMatch(ctx, userID, deck.ID)
	if err != nil {
		t.Fatalf("OpenMatch() error = %v", err)
	}
	return summary.Match
}

func (f *fixture) play(t *testing.T, matchID, userID string, cardID int64) *domain.PlayResult {
	t.Helper()
	res, err := f.resolver.ResolvePlay(context.Background(), matchID, userID, cardID)
	if err != nil {
		t.Fatalf("ResolvePlay(card %d) error = %v", cardID, err)
	}
	return res
}

func statuses(t *testing.T, r *repository.Repos, deckID string) map[int64]domain.CardStatus {
	t.Helper()
	states, err := r.DeckStates.States(context.Background(), deckID)
	if err != nil {
		t.Fatalf("States(%s) error = %v", deckID, err)
	}
	out := make(map[int64]domain.CardStatus, len(states))
	for _, s := range states {
		out[s.CardID] = s.Status
	}
	return out
}

func countStatus(m map[int64]domain.CardStatus, status domain.CardStatus) int {
	n := 0
	for _, s := range m {
		if s == status {
			n++
		}
	}
	return n
}
