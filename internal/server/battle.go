// Package server exposes the battle engine as a connect service with JSON
// bodies.
package server

import (
	"context"
	"net/http"
	"strings"

	"card-battle/internal/apperr"
	"card-battle/internal/middleware"
	"card-battle/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const BattleServiceName = "cardbattle.v1.BattleService"

const (
	BattleServicePath      = "/" + BattleServiceName + "/"
	ListCardsProcedure     = BattleServicePath + "ListCards"
	ListTypesProcedure     = BattleServicePath + "ListTypes"
	CreateDeckProcedure    = BattleServicePath + "CreateDeck"
	ListDecksProcedure     = BattleServicePath + "ListDecks"
	RenameDeckProcedure    = BattleServicePath + "RenameDeck"
	DeleteDeckProcedure    = BattleServicePath + "DeleteDeck"
	OpenMatchProcedure     = BattleServicePath + "OpenMatch"
	GetHandProcedure       = BattleServicePath + "GetHand"
	GetMatchProcedure      = BattleServicePath + "GetMatch"
	ResolvePlayProcedure   = BattleServicePath + "ResolvePlay"
	GetStatisticsProcedure = BattleServicePath + "GetStatistics"
)

type BattleServer struct {
	catalogSvc *service.CatalogService
	deckSvc    *service.DeckService
	matchSvc   *service.MatchService
	resolver   *service.PlayResolver
	logger     zerolog.Logger
}

func NewBattleServer(catalogSvc *service.CatalogService, deckSvc *service.DeckService, matchSvc *service.MatchService, resolver *service.PlayResolver, logger zerolog.Logger) *BattleServer {
	return &BattleServer{catalogSvc: catalogSvc, deckSvc: deckSvc, matchSvc: matchSvc, resolver: resolver, logger: logger}
}

// NewBattleHandler mounts every procedure. The returned path is the prefix
// to register on a mux.
func NewBattleHandler(s *BattleServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListCardsProcedure, connect.NewUnaryHandler(ListCardsProcedure, s.ListCards, opts...))
	mux.Handle(ListTypesProcedure, connect.NewUnaryHandler(ListTypesProcedure, s.ListTypes, opts...))
	mux.Handle(CreateDeckProcedure, connect.NewUnaryHandler(CreateDeckProcedure, s.CreateDeck, opts...))
	mux.Handle(ListDecksProcedure, connect.NewUnaryHandler(ListDecksProcedure, s.ListDecks, opts...))
	mux.Handle(RenameDeckProcedure, connect.NewUnaryHandler(RenameDeckProcedure, s.RenameDeck, opts...))
	mux.Handle(DeleteDeckProcedure, connect.NewUnaryHandler(DeleteDeckProcedure, s.DeleteDeck, opts...))
	mux.Handle(OpenMatchProcedure, connect.NewUnaryHandler(OpenMatchProcedure, s.OpenMatch, opts...))
	mux.Handle(GetHandProcedure, connect.NewUnaryHandler(GetHandProcedure, s.GetHand, opts...))
	mux.Handle(GetMatchProcedure, connect.NewUnaryHandler(GetMatchProcedure, s.GetMatch, opts...))
	mux.Handle(ResolvePlayProcedure, connect.NewUnaryHandler(ResolvePlayProcedure, s.ResolvePlay, opts...))
	mux.Handle(GetStatisticsProcedure, connect.NewUnaryHandler(GetStatisticsProcedure, s.GetStatistics, opts...))
	return BattleServicePath, mux
}

// fail logs the error at a level matching its kind and converts it for the
// wire.
func (s *BattleServer) fail(ctx context.Context, procedure string, err error) error {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}

	switch apperr.KindOf(err) {
	case apperr.KindStorage, apperr.KindUnknown:
		logger.Error().Err(err).Str("procedure", procedure).Msg("request failed")
	case apperr.KindConflict:
		logger.Warn().Err(err).Str("procedure", procedure).Msg("request conflicted")
	default:
		logger.Debug().Err(err).Str("procedure", procedure).Str("code", string(apperr.GetCode(err))).Msg("request rejected")
	}
	return apperr.ToConnect(err)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.New(apperr.CodeInvalidArgument, "%s is required", field)
	}
	return nil
}

func (s *BattleServer) ListCards(ctx context.Context, req *connect.Request[ListCardsRequest]) (*connect.Response[ListCardsResponse], error) {
	cards, err := s.catalogSvc.ListCards(ctx, req.Msg.Type, req.Msg.Name)
	if err != nil {
		return nil, s.fail(ctx, ListCardsProcedure, err)
	}
	return connect.NewResponse(&ListCardsResponse{Cards: toCards(cards)}), nil
}

func (s *BattleServer) ListTypes(ctx context.Context, req *connect.Request[ListTypesRequest]) (*connect.Response[ListTypesResponse], error) {
	types, err := s.catalogSvc.ListTypes(ctx)
	if err != nil {
		return nil, s.fail(ctx, ListTypesProcedure, err)
	}

	resp := &ListTypesResponse{Types: make([]CardType, len(types))}
	for i, t := range types {
		resp.Types[i] = CardType{ID: t.ID, Name: t.Name}
	}
	return connect.NewResponse(resp), nil
}

func (s *BattleServer) CreateDeck(ctx context.Context, req *connect.Request[CreateDeckRequest]) (*connect.Response[CreateDeckResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, CreateDeckProcedure, err)
	}

	deck, err := s.deckSvc.CreateDeck(ctx, user.UserID, user.Name, req.Msg.Name, req.Msg.CardIDs)
	if err != nil {
		return nil, s.fail(ctx, CreateDeckProcedure, err)
	}
	return connect.NewResponse(&CreateDeckResponse{Deck: toDeck(*deck)}), nil
}

func (s *BattleServer) ListDecks(ctx context.Context, req *connect.Request[ListDecksRequest]) (*connect.Response[ListDecksResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, ListDecksProcedure, err)
	}

	decks, err := s.deckSvc.ListDecks(ctx, user.UserID)
	if err != nil {
		return nil, s.fail(ctx, ListDecksProcedure, err)
	}

	resp := &ListDecksResponse{Decks: make([]Deck, len(decks))}
	for i, d := range decks {
		resp.Decks[i] = toDeck(d)
	}
	return connect.NewResponse(resp), nil
}

func (s *BattleServer) RenameDeck(ctx context.Context, req *connect.Request[RenameDeckRequest]) (*connect.Response[RenameDeckResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, RenameDeckProcedure, err)
	}
	if err := required("deck_id", req.Msg.DeckID); err != nil {
		return nil, s.fail(ctx, RenameDeckProcedure, err)
	}

	if err := s.deckSvc.RenameDeck(ctx, user.UserID, req.Msg.DeckID, req.Msg.Name); err != nil {
		return nil, s.fail(ctx, RenameDeckProcedure, err)
	}
	return connect.NewResponse(&RenameDeckResponse{}), nil
}

func (s *BattleServer) DeleteDeck(ctx context.Context, req *connect.Request[DeleteDeckRequest]) (*connect.Response[DeleteDeckResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, DeleteDeckProcedure, err)
	}
	if err := required("deck_id", req.Msg.DeckID); err != nil {
		return nil, s.fail(ctx, DeleteDeckProcedure, err)
	}

	if err := s.deckSvc.DeleteDeck(ctx, user.UserID, req.Msg.DeckID); err != nil {
		return nil, s.fail(ctx, DeleteDeckProcedure, err)
	}
	return connect.NewResponse(&DeleteDeckResponse{}), nil
}

func (s *BattleServer) OpenMatch(ctx context.Context, req *connect.Request[OpenMatchRequest]) (*connect.Response[OpenMatchResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, OpenMatchProcedure, err)
	}
	if err := required("deck_id", req.Msg.DeckID); err != nil {
		return nil, s.fail(ctx, OpenMatchProcedure, err)
	}

	summary, err := s.matchSvc.OpenMatch(ctx, user.UserID, req.Msg.DeckID)
	if err != nil {
		return nil, s.fail(ctx, OpenMatchProcedure, err)
	}
	return connect.NewResponse(&OpenMatchResponse{
		Match: toMatch(summary.Match),
		Hand:  toCards(summary.Hand),
	}), nil
}

func (s *BattleServer) GetHand(ctx context.Context, req *connect.Request[GetHandRequest]) (*connect.Response[GetHandResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, GetHandProcedure, err)
	}
	if err := required("match_id", req.Msg.MatchID); err != nil {
		return nil, s.fail(ctx, GetHandProcedure, err)
	}

	hand, err := s.matchSvc.Hand(ctx, user.UserID, req.Msg.MatchID)
	if err != nil {
		return nil, s.fail(ctx, GetHandProcedure, err)
	}
	return connect.NewResponse(&GetHandResponse{Hand: toCards(hand)}), nil
}

func (s *BattleServer) GetMatch(ctx context.Context, req *connect.Request[GetMatchRequest]) (*connect.Response[GetMatchResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, GetMatchProcedure, err)
	}
	if err := required("match_id", req.Msg.MatchID); err != nil {
		return nil, s.fail(ctx, GetMatchProcedure, err)
	}

	summary, err := s.matchSvc.Summary(ctx, user.UserID, req.Msg.MatchID)
	if err != nil {
		return nil, s.fail(ctx, GetMatchProcedure, err)
	}
	return connect.NewResponse(&GetMatchResponse{
		Match: toMatch(summary.Match),
		Plays: toPlays(summary.Plays),
		Hand:  toCards(summary.Hand),
	}), nil
}

func (s *BattleServer) ResolvePlay(ctx context.Context, req *connect.Request[ResolvePlayRequest]) (*connect.Response[ResolvePlayResponse], error) {
	user, err := middleware.UserFromContext(ctx)
	if err != nil {
		return nil, s.fail(ctx, ResolvePlayProcedure, err)
	}
	if err := required("match_id", req.Msg.MatchID); err != nil {
		return nil, s.fail(ctx, ResolvePlayProcedure, err)
	}

	res, err := s.resolver.ResolvePlay(ctx, req.Msg.MatchID, user.UserID, req.Msg.CardID)
	if err != nil {
		return nil, s.fail(ctx, ResolvePlayProcedure, err)
	}
	return connect.NewResponse(&ResolvePlayResponse{
		PlayID:         res.Play.ID,
		PlayNumber:     res.Play.Turn,
		HouseCardID:    res.Play.HouseCardID,
		UserAttack:     res.Play.UserAttack,
		HouseAttack:    res.Play.HouseAttack,
		UserAdvantage:  res.UserHadAdvantage,
		HouseAdvantage: res.HouseHadAdvantage,
		Outcome:        string(res.Play.Outcome),
		MatchStatus:    string(res.MatchStatus),
		MatchOutcome:   outcomePtr(res.MatchOutcome),
	}), nil
}

func (s *BattleServer) GetStatistics(ctx context.Context, req *connect.Request[GetStatisticsRequest]) (*connect.Response[GetStatisticsResponse], error) {
	stats, err := s.catalogSvc.Statistics(ctx)
	if err != nil {
		return nil, s.fail(ctx, GetStatisticsProcedure, err)
	}

	resp := &GetStatisticsResponse{
		Users:  make([]UserStats, len(stats.Users)),
		Totals: toUserStats(stats.Totals),
	}
	for i, u := range stats.Users {
		resp.Users[i] = toUserStats(u)
	}
	return connect.NewResponse(resp), nil
}
