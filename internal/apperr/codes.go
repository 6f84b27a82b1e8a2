// Package apperr defines the engine's error taxonomy.
package apperr

import "connectrpc.com/connect"

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeCardNotFound  Code = "CARD_NOT_FOUND"
	CodeTypeNotFound  Code = "TYPE_NOT_FOUND"
	CodeDeckNotFound  Code = "DECK_NOT_FOUND"
	CodeMatchNotFound Code = "MATCH_NOT_FOUND"

	// Ownership errors
	CodeForbidden Code = "FORBIDDEN"

	// Play errors
	CodeMatchFinished     Code = "MATCH_FINISHED"
	CodeInvalidCard       Code = "INVALID_CARD"
	CodeCardAlreadyPlayed Code = "CARD_ALREADY_PLAYED"
	CodeCardNotInDeck     Code = "CARD_NOT_IN_DECK"
	CodeInvalidTransition Code = "INVALID_TRANSITION"

	// Opponent errors
	CodeNoCardsAvailable    Code = "NO_CARDS_AVAILABLE"
	CodeOpponentUnavailable Code = "OPPONENT_UNAVAILABLE"

	// Deck errors
	CodeDeckNameEmpty     Code = "DECK_NAME_EMPTY"
	CodeDeckInvalidSize   Code = "DECK_INVALID_SIZE"
	CodeDeckDuplicateCard Code = "DECK_DUPLICATE_CARD"
	CodeDeckLimitReached  Code = "DECK_LIMIT_REACHED"
	CodeDeckInUse         Code = "DECK_IN_USE"

	// Request errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Storage errors
	CodeConflict Code = "CONFLICT"
	CodeStorage  Code = "STORAGE"
)

// Kind groups codes into the taxonomy callers branch on.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindInvalidState     Kind = "invalid_state"
	KindNoCardsAvailable Kind = "no_cards_available"
	KindConflict         Kind = "conflict"
	KindStorage          Kind = "storage"
	KindInvalidArgument  Kind = "invalid_argument"
	KindUnauthenticated  Kind = "unauthenticated"
)

func (c Code) Kind() Kind {
	switch c {
	case CodeCardNotFound,
		CodeTypeNotFound,
		CodeDeckNotFound,
		CodeMatchNotFound:
		return KindNotFound

	case CodeForbidden:
		return KindForbidden

	// InvalidCard is the card-not-owned precondition; it reads as a state
	// failure of the deck rather than a lookup miss.
	case CodeMatchFinished,
		CodeInvalidCard,
		CodeCardAlreadyPlayed,
		CodeCardNotInDeck,
		CodeInvalidTransition,
		CodeDeckInUse,
		CodeDeckLimitReached:
		return KindInvalidState

	case CodeNoCardsAvailable,
		CodeOpponentUnavailable:
		return KindNoCardsAvailable

	case CodeConflict:
		return KindConflict

	case CodeStorage:
		return KindStorage

	case CodeDeckNameEmpty,
		CodeDeckInvalidSize,
		CodeDeckDuplicateCard,
		CodeInvalidArgument:
		return KindInvalidArgument

	case CodeUnauthenticated:
		return KindUnauthenticated

	default:
		return KindUnknown
	}
}

// ConnectCode maps a code to its transport status.
func (c Code) ConnectCode() connect.Code {
	switch c.Kind() {
	case KindNotFound:
		return connect.CodeNotFound
	case KindForbidden:
		return connect.CodePermissionDenied
	case KindInvalidState, KindNoCardsAvailable:
		return connect.CodeFailedPrecondition
	case KindConflict:
		return connect.CodeAborted
	case KindInvalidArgument:
		return connect.CodeInvalidArgument
	case KindUnauthenticated:
		return connect.CodeUnauthenticated
	default:
		return connect.CodeInternal
	}
}
