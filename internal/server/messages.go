package server

import (
	"time"

	"card-battle/internal/domain"
)

type Card struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Attack   int    `json:"attack"`
	TypeID   int64  `json:"type_id"`
	TypeName string `json:"type_name"`
	Image    string `json:"image"`
}

type CardType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Deck struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CardIDs   []int64   `json:"card_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type Match struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	Status    string    `json:"status"`
	Outcome   *string   `json:"outcome"`
	PlayCount int       `json:"play_count"`
	CreatedAt time.Time `json:"created_at"`
}

type Play struct {
	ID          string  `json:"id"`
	Turn        int     `json:"turn"`
	UserCardID  int64   `json:"user_card_id"`
	HouseCardID int64   `json:"house_card_id"`
	UserAttack  float64 `json:"user_attack"`
	HouseAttack float64 `json:"house_attack"`
	Outcome     string  `json:"outcome"`
}

type UserStats struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Won    int    `json:"won"`
	Lost   int    `json:"lost"`
	Drawn  int    `json:"drawn"`
}

type ListCardsRequest struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

type ListCardsResponse struct {
	Cards []Card `json:"cards"`
}

type ListTypesRequest struct{}

type ListTypesResponse struct {
	Types []CardType `json:"types"`
}

type CreateDeckRequest struct {
	Name    string  `json:"name"`
	CardIDs []int64 `json:"card_ids"`
}

type CreateDeckResponse struct {
	Deck Deck `json:"deck"`
}

type ListDecksRequest struct{}

type ListDecksResponse struct {
	Decks []Deck `json:"decks"`
}

type RenameDeckRequest struct {
	DeckID string `json:"deck_id"`
	Name   string `json:"name"`
}

type RenameDeckResponse struct{}

type DeleteDeckRequest struct {
	DeckID string `json:"deck_id"`
}

type DeleteDeckResponse struct{}

type OpenMatchRequest struct {
	DeckID string `json:"deck_id"`
}

type OpenMatchResponse struct {
	Match Match  `json:"match"`
	Hand  []Card `json:"hand"`
}

type GetHandRequest struct {
	MatchID string `json:"match_id"`
}

type GetHandResponse struct {
	Hand []Card `json:"hand"`
}

type GetMatchRequest struct {
	MatchID string `json:"match_id"`
}

type GetMatchResponse struct {
	Match Match  `json:"match"`
	Plays []Play `json:"plays"`
	Hand  []Card `json:"hand"`
}

type ResolvePlayRequest struct {
	MatchID string `json:"match_id"`
	CardID  int64  `json:"card_id"`
}

type ResolvePlayResponse struct {
	PlayID         string  `json:"play_id"`
	PlayNumber     int     `json:"play_number"`
	HouseCardID    int64   `json:"house_card_id"`
	UserAttack     float64 `json:"user_attack"`
	HouseAttack    float64 `json:"house_attack"`
	UserAdvantage  bool    `json:"user_advantage"`
	HouseAdvantage bool    `json:"house_advantage"`
	Outcome        string  `json:"outcome"`
	MatchStatus    string  `json:"match_status"`
	MatchOutcome   *string `json:"match_outcome"`
}

type GetStatisticsRequest struct{}

type GetStatisticsResponse struct {
	Users  []UserStats `json:"users"`
	Totals UserStats   `json:"totals"`
}

func toCards(cards []domain.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = Card{ID: c.ID, Name: c.Name, Attack: c.Attack, TypeID: c.TypeID, TypeName: c.TypeName, Image: c.Image}
	}
	return out
}

func toDeck(d domain.Deck) Deck {
	return Deck{ID: d.ID, Name: d.Name, CardIDs: d.CardIDs, CreatedAt: d.CreatedAt}
}

func outcomePtr(o *domain.Outcome) *string {
	if o == nil {
		return nil
	}
	s := string(*o)
	return &s
}

func toMatch(m domain.Match) Match {
	return Match{
		ID:        m.ID,
		DeckID:    m.DeckID,
		Status:    string(m.Status),
		Outcome:   outcomePtr(m.Outcome),
		PlayCount: m.PlayCount,
		CreatedAt: m.CreatedAt,
	}
}

func toPlays(plays []domain.Play) []Play {
	out := make([]Play, len(plays))
	for i, p := range plays {
		out[i] = Play{
			ID:          p.ID,
			Turn:        p.Turn,
			UserCardID:  p.UserCardID,
			HouseCardID: p.HouseCardID,
			UserAttack:  p.UserAttack,
			HouseAttack: p.HouseAttack,
			Outcome:     string(p.Outcome),
		}
	}
	return out
}

func toUserStats(s domain.UserStats) UserStats {
	return UserStats{UserID: s.UserID, Name: s.Name, Won: s.Won, Lost: s.Lost, Drawn: s.Drawn}
}
