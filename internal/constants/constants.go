package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	CatalogTimeout  = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyTimeoutMS   = 5000
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DeckSize        = 5
	MaxDecksPerUser = 3
	PlaysPerMatch   = 5
)

// Type advantage is applied in tenths so scores compare exactly:
// an advantaged card scores attack*13 against attack*10.
const (
	AttackScale     = 10
	AdvantageFactor = 13
)
