package db

import "database/sql"

type User struct {
	ID   string
	Name string
}

type CardType struct {
	ID   int64
	Name string
}

type Card struct {
	ID       int64
	Name     string
	Attack   int64
	TypeID   int64
	TypeName string
	Image    string
}

type Deck struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt int64
}

type DeckCard struct {
	DeckID   string
	CardID   int64
	Position int64
	Status   string
}

type Match struct {
	ID          string
	UserID      string
	DeckID      string
	HouseDeckID string
	CreatedAt   int64
	Status      string
	Outcome     sql.NullString
	PlayCount   int64
}

type Play struct {
	ID          string
	MatchID     string
	Turn        int64
	UserCardID  int64
	HouseCardID int64
	UserAttack  float64
	HouseAttack float64
	Outcome     string
	CreatedAt   int64
}

type OutcomeTally struct {
	UserWon  int64
	HouseWon int64
	Draw     int64
}

type UserOutcomeTally struct {
	UserID string
	Name   string
	OutcomeTally
}
