package domain

import (
	"time"
)

type CardType struct {
	ID   int64
	Name string
}

type Card struct {
	ID       int64
	Name     string
	Attack   int
	TypeID   int64
	TypeName string
	Image    string
}

// TypeAdvantage means Attacker deals bonus damage to Defender.
type TypeAdvantage struct {
	AttackerTypeID int64
	DefenderTypeID int64
}

type Deck struct {
	ID        string
	UserID    string
	Name      string
	CardIDs   []int64 // ordered by position
	CreatedAt time.Time
}

type CardStatus string

const (
	CardInDeck    CardStatus = "in_deck"
	CardInHand    CardStatus = "in_hand"
	CardDiscarded CardStatus = "discarded"
)

func (s CardStatus) Valid() bool {
	switch s {
	case CardInDeck, CardInHand, CardDiscarded:
		return true
	}
	return false
}

type DeckCardState struct {
	DeckID string
	CardID int64
	Status CardStatus
}

type MatchStatus string

const (
	MatchActive   MatchStatus = "active"
	MatchFinished MatchStatus = "finished"
)

type Outcome string

const (
	OutcomeUserWon  Outcome = "user_won"
	OutcomeHouseWon Outcome = "house_won"
	OutcomeDraw     Outcome = "draw"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeUserWon, OutcomeHouseWon, OutcomeDraw:
		return true
	}
	return false
}

type Match struct {
	ID          string
	UserID      string
	DeckID      string
	HouseDeckID string
	CreatedAt   time.Time
	Status      MatchStatus
	Outcome     *Outcome // nil while active
	PlayCount   int
}

type Play struct {
	ID          string
	MatchID     string
	Turn        int
	UserCardID  int64
	HouseCardID int64
	UserAttack  float64 // after type advantage
	HouseAttack float64
	Outcome     Outcome
	CreatedAt   time.Time
}

type PlayResult struct {
	Play              Play
	UserHadAdvantage  bool
	HouseHadAdvantage bool
	MatchStatus       MatchStatus
	MatchOutcome      *Outcome // set only when this play finished the match
}

// Tally counts play outcomes; draws credit neither side.
type Tally struct {
	UserWon  int
	HouseWon int
	Draws    int
}

type MatchSummary struct {
	Match Match
	Plays []Play
	Hand  []Card
}

type UserStats struct {
	UserID string
	Name   string
	Won    int
	Lost   int
	Drawn  int
}

type Statistics struct {
	Users  []UserStats
	Totals UserStats
}
