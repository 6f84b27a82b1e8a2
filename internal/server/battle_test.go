package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"card-battle/internal/middleware"
	"card-battle/internal/service"
	"card-battle/internal/testkit"

	"connectrpc.com/connect"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type firstSource struct{}

func (firstSource) IntN(int) int { return 0 }

func newTestServer(t *testing.T) (*httptest.Server, *testkit.Env) {
	t.Helper()
	env := testkit.NewEnv(t)
	logger := zerolog.Nop()

	resolver := service.NewPlayResolver(
		env.Store,
		service.NewOpponentPolicyWithSource(firstSource{}, logger),
		service.NewMatchStateMachine(logger),
		env.Config,
		logger,
	)
	battle := NewBattleServer(
		service.NewCatalogService(env.Store, logger),
		service.NewDeckService(env.Store, env.Config, logger),
		service.NewMatchService(env.Store, env.Config, logger),
		resolver,
		logger,
	)

	_, handler := NewBattleHandler(battle)
	srv := httptest.NewServer(middleware.Auth(env.Config.AuthSecret, logger)(handler))
	t.Cleanup(srv.Close)
	return srv, env
}

func token(t *testing.T, secret, userID string) string {
	t.Helper()
	claims := middleware.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func call[Req, Res any](t *testing.T, srv *httptest.Server, procedure, bearer string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](srv.Client(), srv.URL+procedure, connect.WithCodec(JSONCodec{}))
	req := connect.NewRequest(msg)
	if bearer != "" {
		req.Header().Set("Authorization", "Bearer "+bearer)
	}
	res, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func errorCode(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Meta().Get("X-Error-Code")
	}
	return ""
}

func TestPublicProcedures(t *testing.T) {
	srv, _ := newTestServer(t)

	cards, err := call[ListCardsRequest, ListCardsResponse](t, srv, ListCardsProcedure, "", &ListCardsRequest{Type: "Agua"})
	if err != nil {
		t.Fatalf("ListCards error = %v", err)
	}
	if len(cards.Cards) != 3 {
		t.Errorf("water cards = %d, want 3", len(cards.Cards))
	}

	types, err := call[ListTypesRequest, ListTypesResponse](t, srv, ListTypesProcedure, "", &ListTypesRequest{})
	if err != nil {
		t.Fatalf("ListTypes error = %v", err)
	}
	if len(types.Types) != 7 {
		t.Errorf("types = %d, want 7", len(types.Types))
	}

	_, err = call[ListCardsRequest, ListCardsResponse](t, srv, ListCardsProcedure, "", &ListCardsRequest{Type: "Hielo"})
	if connect.CodeOf(err) != connect.CodeNotFound || errorCode(err) != "TYPE_NOT_FOUND" {
		t.Fatalf("unknown type error = %v (%s)", err, errorCode(err))
	}

	stats, err := call[GetStatisticsRequest, GetStatisticsResponse](t, srv, GetStatisticsProcedure, "", &GetStatisticsRequest{})
	if err != nil {
		t.Fatalf("GetStatistics error = %v", err)
	}
	if len(stats.Users) != 0 || stats.Totals.Won != 0 {
		t.Errorf("stats on a fresh store = %+v", stats)
	}
}

func TestProceduresRequireToken(t *testing.T) {
	srv, env := newTestServer(t)

	_, err := call[ListDecksRequest, ListDecksResponse](t, srv, ListDecksProcedure, "", &ListDecksRequest{})
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("missing token error = %v", err)
	}

	_, err = call[ListDecksRequest, ListDecksResponse](t, srv, ListDecksProcedure, token(t, "wrong", "ash"), &ListDecksRequest{})
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("bad token error = %v", err)
	}

	decks, err := call[ListDecksRequest, ListDecksResponse](t, srv, ListDecksProcedure, token(t, env.Config.AuthSecret, "ash"), &ListDecksRequest{})
	if err != nil {
		t.Fatalf("ListDecks error = %v", err)
	}
	if len(decks.Decks) != 0 {
		t.Errorf("decks = %+v, want none", decks.Decks)
	}
}

func TestMatchOverRPC(t *testing.T) {
	srv, env := newTestServer(t)
	ash := token(t, env.Config.AuthSecret, "ash")
	misty := token(t, env.Config.AuthSecret, "misty")

	_, err := call[CreateDeckRequest, CreateDeckResponse](t, srv, CreateDeckProcedure, ash, &CreateDeckRequest{Name: "mazo", CardIDs: []int64{1, 2, 3}})
	if connect.CodeOf(err) != connect.CodeInvalidArgument || errorCode(err) != "DECK_INVALID_SIZE" {
		t.Fatalf("short deck error = %v (%s)", err, errorCode(err))
	}

	created, err := call[CreateDeckRequest, CreateDeckResponse](t, srv, CreateDeckProcedure, ash, &CreateDeckRequest{Name: "mazo", CardIDs: []int64{2, 12, 14, 18, 11}})
	if err != nil {
		t.Fatalf("CreateDeck error = %v", err)
	}

	opened, err := call[OpenMatchRequest, OpenMatchResponse](t, srv, OpenMatchProcedure, ash, &OpenMatchRequest{DeckID: created.Deck.ID})
	if err != nil {
		t.Fatalf("OpenMatch error = %v", err)
	}
	if opened.Match.Status != "active" || opened.Match.Outcome != nil || len(opened.Hand) != 5 {
		t.Fatalf("opened = %+v", opened)
	}
	matchID := opened.Match.ID

	_, err = call[ResolvePlayRequest, ResolvePlayResponse](t, srv, ResolvePlayProcedure, misty, &ResolvePlayRequest{MatchID: matchID, CardID: 2})
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Fatalf("stranger play error = %v", err)
	}

	// Squirtle (Agua) against Charmander (Fuego).
	first, err := call[ResolvePlayRequest, ResolvePlayResponse](t, srv, ResolvePlayProcedure, ash, &ResolvePlayRequest{MatchID: matchID, CardID: 2})
	if err != nil {
		t.Fatalf("ResolvePlay error = %v", err)
	}
	if first.PlayNumber != 1 || first.HouseCardID != 1 || !first.UserAdvantage || first.UserAttack != 62.4 || first.Outcome != "user_won" {
		t.Fatalf("first play = %+v", first)
	}

	_, err = call[ResolvePlayRequest, ResolvePlayResponse](t, srv, ResolvePlayProcedure, ash, &ResolvePlayRequest{MatchID: matchID, CardID: 2})
	if connect.CodeOf(err) != connect.CodeFailedPrecondition || errorCode(err) != "CARD_ALREADY_PLAYED" {
		t.Fatalf("replay error = %v (%s)", err, errorCode(err))
	}

	var last *ResolvePlayResponse
	for _, card := range []int64{12, 14, 18, 11} {
		last, err = call[ResolvePlayRequest, ResolvePlayResponse](t, srv, ResolvePlayProcedure, ash, &ResolvePlayRequest{MatchID: matchID, CardID: card})
		if err != nil {
			t.Fatalf("ResolvePlay(%d) error = %v", card, err)
		}
	}
	if last.PlayNumber != 5 || last.MatchStatus != "finished" || last.MatchOutcome == nil {
		t.Fatalf("last play = %+v", last)
	}

	summary, err := call[GetMatchRequest, GetMatchResponse](t, srv, GetMatchProcedure, ash, &GetMatchRequest{MatchID: matchID})
	if err != nil {
		t.Fatalf("GetMatch error = %v", err)
	}
	if len(summary.Plays) != 5 || summary.Match.Outcome == nil || *summary.Match.Outcome != *last.MatchOutcome {
		t.Fatalf("summary = %+v", summary)
	}

	_, err = call[ResolvePlayRequest, ResolvePlayResponse](t, srv, ResolvePlayProcedure, ash, &ResolvePlayRequest{MatchID: matchID, CardID: 2})
	if connect.CodeOf(err) != connect.CodeFailedPrecondition || errorCode(err) != "MATCH_FINISHED" {
		t.Fatalf("sixth play error = %v (%s)", err, errorCode(err))
	}

	_, err = call[DeleteDeckRequest, DeleteDeckResponse](t, srv, DeleteDeckProcedure, ash, &DeleteDeckRequest{DeckID: created.Deck.ID})
	if errorCode(err) != "DECK_IN_USE" {
		t.Fatalf("delete used deck error = %v (%s)", err, errorCode(err))
	}

	stats, err := call[GetStatisticsRequest, GetStatisticsResponse](t, srv, GetStatisticsProcedure, "", &GetStatisticsRequest{})
	if err != nil {
		t.Fatalf("GetStatistics error = %v", err)
	}
	if len(stats.Users) != 1 || stats.Users[0].UserID != "ash" {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestMissingFields(t *testing.T) {
	srv, env := newTestServer(t)
	ash := token(t, env.Config.AuthSecret, "ash")

	_, err := call[ResolvePlayRequest, ResolvePlayResponse](t, srv, ResolvePlayProcedure, ash, &ResolvePlayRequest{CardID: 1})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("missing match id error = %v", err)
	}
	_, err = call[GetHandRequest, GetHandResponse](t, srv, GetHandProcedure, ash, &GetHandRequest{MatchID: "missing"})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("missing match error = %v", err)
	}
}
