package service

import (
	"context"
	"sync"
	"testing"

	"card-battle/internal/apperr"
	"card-battle/internal/domain"
	"card-battle/internal/repository"

	"github.com/google/go-cmp/cmp"
)

var userDeck = []int64{5, 12, 14, 18, 11} // Rattata, Meowth, Sandshrew, Farfetchd, Spearow

func TestResolvePlayScoring(t *testing.T) {
	// Every case plays against Charmander (52, Fuego).
	tests := []struct {
		name         string
		card         int64
		deck         []int64
		wantUserAtk  float64
		wantHouseAtk float64
		wantUserAdv  bool
		wantHouseAdv bool
		wantOutcome  domain.Outcome
	}{
		{
			name:         "user advantage",
			card:         2, // Squirtle 48 Agua
			deck:         []int64{2, 4, 5, 8, 10},
			wantUserAtk:  62.4,
			wantHouseAtk: 52,
			wantUserAdv:  true,
			wantOutcome:  domain.OutcomeUserWon,
		},
		{
			name:         "house advantage",
			card:         3, // Bulbasaur 49 Planta
			deck:         []int64{3, 4, 5, 8, 9},
			wantUserAtk:  49,
			wantHouseAtk: 67.6,
			wantHouseAdv: true,
			wantOutcome:  domain.OutcomeHouseWon,
		},
		{
			name:         "no relation",
			card:         5, // Rattata 56 Normal
			deck:         []int64{5, 4, 8, 9, 10},
			wantUserAtk:  56,
			wantHouseAtk: 52,
			wantOutcome:  domain.OutcomeUserWon,
		},
		{
			name:         "same type draws",
			card:         1, // Charmander 52 Fuego
			deck:         []int64{1, 4, 5, 9, 10},
			wantUserAtk:  52,
			wantHouseAtk: 52,
			wantOutcome:  domain.OutcomeDraw,
		},
		{
			name:         "weaker card loses",
			card:         8, // Vulpix 41 Fuego
			deck:         []int64{8, 4, 5, 9, 10},
			wantUserAtk:  41,
			wantHouseAtk: 52,
			wantOutcome:  domain.OutcomeHouseWon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			match := f.openMatch(t, "ash", tt.deck)

			res := f.play(t, match.ID, "ash", tt.card)

			if res.Play.HouseCardID != 1 {
				t.Fatalf("house card = %d, want 1", res.Play.HouseCardID)
			}
			if res.Play.UserAttack != tt.wantUserAtk || res.Play.HouseAttack != tt.wantHouseAtk {
				t.Errorf("attacks = %v vs %v, want %v vs %v", res.Play.UserAttack, res.Play.HouseAttack, tt.wantUserAtk, tt.wantHouseAtk)
			}
			if res.UserHadAdvantage != tt.wantUserAdv || res.HouseHadAdvantage != tt.wantHouseAdv {
				t.Errorf("advantage = user %v house %v, want user %v house %v", res.UserHadAdvantage, res.HouseHadAdvantage, tt.wantUserAdv, tt.wantHouseAdv)
			}
			if res.Play.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", res.Play.Outcome, tt.wantOutcome)
			}
			if res.Play.Turn != 1 || res.MatchStatus != domain.MatchActive || res.MatchOutcome != nil {
				t.Errorf("turn %d status %s outcome %v, want first play of an active match", res.Play.Turn, res.MatchStatus, res.MatchOutcome)
			}
		})
	}
}

func TestApplyAdvantageIsExclusive(t *testing.T) {
	sc := applyAdvantage(50, 50, true, true)
	if !sc.userAdvantage || sc.houseAdvantage {
		t.Fatalf("both flags set: user %v house %v, want only the user's", sc.userAdvantage, sc.houseAdvantage)
	}
	if sc.user != 650 || sc.house != 500 {
		t.Fatalf("scores = %d vs %d, want 650 vs 500", sc.user, sc.house)
	}

	sc = applyAdvantage(50, 50, false, true)
	if sc.user != 500 || sc.house != 650 || sc.userAdvantage {
		t.Fatalf("house advantage scored %+v", sc)
	}
}

func TestResolvePlayPreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	match := f.openMatch(t, "ash", userDeck)

	tests := []struct {
		name    string
		matchID string
		userID  string
		card    int64
		want    apperr.Code
	}{
		{name: "unknown match", matchID: "missing", userID: "ash", card: 5, want: apperr.CodeMatchNotFound},
		{name: "someone else's match", matchID: match.ID, userID: "misty", card: 5, want: apperr.CodeForbidden},
		{name: "card outside the deck", matchID: match.ID, userID: "ash", card: 1, want: apperr.CodeInvalidCard},
		{name: "unknown card", matchID: match.ID, userID: "ash", card: 999, want: apperr.CodeInvalidCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.resolver.ResolvePlay(ctx, tt.matchID, tt.userID, tt.card)
			if !apperr.IsCode(err, tt.want) {
				t.Fatalf("error = %v, want %s", err, tt.want)
			}
		})
	}

	plays, err := f.env.Store.Read().Matches.Plays(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 0 {
		t.Fatalf("rejected plays left %d rows", len(plays))
	}
}

func TestResolvePlayTwiceWithSameCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	match := f.openMatch(t, "ash", userDeck)

	f.play(t, match.ID, "ash", 5)
	_, err := f.resolver.ResolvePlay(ctx, match.ID, "ash", 5)
	if !apperr.IsCode(err, apperr.CodeCardAlreadyPlayed) {
		t.Fatalf("second play error = %v, want %s", err, apperr.CodeCardAlreadyPlayed)
	}
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Errorf("kind = %s, want %s", apperr.KindOf(err), apperr.KindInvalidState)
	}

	plays, err := f.env.Store.Read().Matches.Plays(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 || plays[0].UserCardID != 5 {
		t.Fatalf("plays = %+v, want exactly one play of card 5", plays)
	}

	got, err := f.env.Store.Read().Matches.Get(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayCount != 1 {
		t.Fatalf("play count = %d, want 1", got.PlayCount)
	}
}

func TestFullMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	match := f.openMatch(t, "ash", userDeck)

	for i, card := range userDeck[:4] {
		res := f.play(t, match.ID, "ash", card)
		if res.Play.Turn != i+1 {
			t.Fatalf("play %d got turn %d", i+1, res.Play.Turn)
		}
		if res.MatchStatus != domain.MatchActive {
			t.Fatalf("match finished after %d plays", i+1)
		}
	}

	// Resolve the fifth play by hand to observe the decks between the
	// discards and the reset.
	err := f.env.Store.InTx(ctx, func(r *repository.Repos) error {
		res, err := f.resolver.apply(ctx, r, match.ID, "ash", userDeck[4])
		if err != nil {
			return err
		}
		if res.Play.Turn != 5 {
			t.Errorf("turn = %d, want 5", res.Play.Turn)
		}

		user, house := statuses(t, r, match.DeckID), statuses(t, r, match.HouseDeckID)
		if countStatus(user, domain.CardDiscarded) != 5 || countStatus(house, domain.CardDiscarded) != 5 {
			t.Errorf("after fifth play: user %v house %v, want all discarded", user, house)
		}

		current, err := r.Matches.Get(ctx, match.ID)
		if err != nil {
			return err
		}
		if _, err := f.resolver.machine.Finalize(ctx, r, current); err != nil {
			return err
		}

		user, house = statuses(t, r, match.DeckID), statuses(t, r, match.HouseDeckID)
		if countStatus(user, domain.CardInHand) != 5 || countStatus(house, domain.CardInHand) != 5 {
			t.Errorf("after reset: user %v house %v, want all in_hand", user, house)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("fifth play: %v", err)
	}

	got, err := f.env.Store.Read().Matches.Get(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	plays, err := f.env.Store.Read().Matches.Plays(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 5 {
		t.Fatalf("plays = %d, want 5", len(plays))
	}

	var tally domain.Tally
	for _, p := range plays {
		switch p.Outcome {
		case domain.OutcomeUserWon:
			tally.UserWon++
		case domain.OutcomeHouseWon:
			tally.HouseWon++
		default:
			tally.Draws++
		}
	}
	// Rattata, Sandshrew, Farfetchd and Spearow win; Meowth loses to Squirtle.
	if diff := cmp.Diff(domain.Tally{UserWon: 4, HouseWon: 1}, tally); diff != "" {
		t.Errorf("tally mismatch (-want +got):\n%s", diff)
	}
	if got.Status != domain.MatchFinished || got.Outcome == nil || *got.Outcome != Decide(tally) {
		t.Fatalf("match = %s %v, want finished with %s", got.Status, got.Outcome, Decide(tally))
	}

	_, err = f.resolver.ResolvePlay(ctx, match.ID, "ash", userDeck[0])
	if !apperr.IsCode(err, apperr.CodeMatchFinished) {
		t.Fatalf("sixth play error = %v, want %s", err, apperr.CodeMatchFinished)
	}
}

func TestFifthPlayFinishesThroughResolvePlay(t *testing.T) {
	f := newFixture(t)
	match := f.openMatch(t, "ash", userDeck)

	var last *domain.PlayResult
	for _, card := range userDeck {
		last = f.play(t, match.ID, "ash", card)
	}
	if last.MatchStatus != domain.MatchFinished || last.MatchOutcome == nil {
		t.Fatalf("last play = %+v, want a finished match outcome", last)
	}
	if *last.MatchOutcome != domain.OutcomeUserWon {
		t.Errorf("match outcome = %s, want %s", *last.MatchOutcome, domain.OutcomeUserWon)
	}

	hand, err := f.matches.Hand(context.Background(), "ash", match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hand) != 5 {
		t.Errorf("hand after finish = %d cards, want the whole deck back", len(hand))
	}
}

func TestConcurrentFifthPlay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	match := f.openMatch(t, "ash", userDeck)

	for _, card := range userDeck[:4] {
		f.play(t, match.ID, "ash", card)
	}

	const racers = 4
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.resolver.ResolvePlay(ctx, match.ID, "ash", userDeck[4])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperr.IsCode(err, apperr.CodeMatchFinished), apperr.IsCode(err, apperr.CodeConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d racers resolved the fifth play, want 1", wins)
	}

	plays, err := f.env.Store.Read().Matches.Plays(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 5 {
		t.Fatalf("plays = %d, want 5", len(plays))
	}
	got, err := f.env.Store.Read().Matches.Get(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.MatchFinished || got.PlayCount != 5 {
		t.Fatalf("match = %s with %d plays", got.Status, got.PlayCount)
	}
}

func TestInterleavedMatchesKeepPlaying(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.openMatch(t, "ash", userDeck)
	b := f.openMatch(t, "misty", []int64{4, 8, 9, 10, 13})

	// Together these take more house cards than one deck holds.
	for _, card := range userDeck[:3] {
		f.play(t, a.ID, "ash", card)
	}
	f.play(t, b.ID, "misty", 4)
	f.play(t, b.ID, "misty", 8)

	c := f.openMatch(t, "brock", []int64{15, 16, 17, 2, 3})
	if a.HouseDeckID == b.HouseDeckID || b.HouseDeckID == c.HouseDeckID {
		t.Fatalf("house decks %s, %s, %s are shared", a.HouseDeckID, b.HouseDeckID, c.HouseDeckID)
	}

	for _, card := range []int64{15, 16, 17, 2, 3} {
		f.play(t, c.ID, "brock", card)
	}
	for _, card := range userDeck[3:] {
		f.play(t, a.ID, "ash", card)
	}
	for _, card := range []int64{9, 10, 13} {
		f.play(t, b.ID, "misty", card)
	}

	r := f.env.Store.Read()
	for _, m := range []domain.Match{a, b, c} {
		got, err := r.Matches.Get(ctx, m.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != domain.MatchFinished || got.PlayCount != 5 {
			t.Errorf("match %s = %s with %d plays, want finished with 5", m.ID, got.Status, got.PlayCount)
		}
	}

	template := statuses(t, r, f.env.Config.HouseDeckID)
	if n := countStatus(template, domain.CardInDeck); n != 5 {
		t.Errorf("house template has %d in_deck cards, want 5: %v", n, template)
	}
}

func TestOpponentUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	match := f.openMatch(t, "ash", userDeck)

	// Empty this match's house copy behind the resolver's back.
	err := f.env.Store.InTx(ctx, func(r *repository.Repos) error {
		for _, id := range []int64{1, 2, 3, 6, 7} {
			if err := r.DeckStates.MarkDiscarded(ctx, match.HouseDeckID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.resolver.ResolvePlay(ctx, match.ID, "ash", userDeck[0])
	if !apperr.IsCode(err, apperr.CodeOpponentUnavailable) || !apperr.IsCode(err, apperr.CodeNoCardsAvailable) {
		t.Fatalf("error = %v, want %s wrapping %s", err, apperr.CodeOpponentUnavailable, apperr.CodeNoCardsAvailable)
	}

	status, err := f.env.Store.Read().DeckStates.CardState(ctx, match.DeckID, userDeck[0])
	if err != nil {
		t.Fatal(err)
	}
	if status != domain.CardInHand {
		t.Errorf("card %d = %s, want it left in_hand", userDeck[0], status)
	}
	got, err := f.env.Store.Read().Matches.Get(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayCount != 0 {
		t.Errorf("play count = %d, want 0", got.PlayCount)
	}
}
