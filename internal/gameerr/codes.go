// Package gameerr classifies expected business-rule failures so callers can
// render them directly. Infrastructure failures stay plain errors.
package gameerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation
	CodeBadLineupSize Code = "BAD_LINEUP_SIZE"
	CodeUnknownStat   Code = "UNKNOWN_STAT"
	CodeStatRequired  Code = "STAT_REQUIRED"
	CodeUnknownPack   Code = "UNKNOWN_PACK"

	// Precondition
	CodeNotYourTurn    Code = "NOT_YOUR_TURN"
	CodeAlreadyStarted Code = "GAME_ALREADY_STARTED"
	CodeSelfJoin       Code = "SELF_JOIN"
	CodeNotInGame      Code = "NOT_IN_GAME"
	CodeWrongPhase     Code = "WRONG_PHASE"
	CodeNotWinner      Code = "NOT_WINNER"
	CodeNoPacksLeft    Code = "NO_PACKS_LEFT"
	CodeInsufficient   Code = "INSUFFICIENT_POINTS"

	// NotFound
	CodeGameNotFound Code = "GAME_NOT_FOUND"
	CodeCodeNotFound Code = "CODE_NOT_FOUND"
	CodeCardNotFound Code = "CARD_NOT_FOUND"
	CodeInvalidCard  Code = "INVALID_CARD"

	// Conflict
	CodeAlreadyClaimed Code = "POINTS_ALREADY_CLAIMED"
	CodeStaleWrite     Code = "STALE_WRITE"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindConflict
)

// Kind maps domain codes to their failure class.
func (c Code) Kind() Kind {
	switch c {
	case CodeBadLineupSize, CodeUnknownStat, CodeStatRequired, CodeUnknownPack:
		return KindValidation
	case CodeNotYourTurn, CodeAlreadyStarted, CodeSelfJoin, CodeNotInGame,
		CodeWrongPhase, CodeNotWinner, CodeNoPacksLeft, CodeInsufficient:
		return KindPrecondition
	case CodeGameNotFound, CodeCodeNotFound, CodeCardNotFound, CodeInvalidCard:
		return KindNotFound
	case CodeAlreadyClaimed, CodeStaleWrite:
		return KindConflict
	default:
		return KindUnknown
	}
}

// HTTPStatus maps domain codes to HTTP statuses for the REST surface.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindPrecondition:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a rejected action with a reason fit for direct display.
type Error struct {
	Code   Code
	Reason string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Reason }

func New(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the domain code from err, or CodeUnknown for
// infrastructure failures.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return CodeUnknown
}

// IsDomain reports whether err is an expected business-rule rejection.
func IsDomain(err error) bool {
	var ge *Error
	return errors.As(err, &ge)
}
