// Package apperror defines the failure taxonomy returned by the game services.
//
// Business-rule failures carry a Kind and a stable Code so the request layer
// can map them to a status without inspecting messages. Anything that is not
// an *Error is treated as an internal failure.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups failures by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindState
	KindEconomic
	KindNotFound
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindEconomic:
		return "economic"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	}
	return "internal"
}

// HTTPStatus is the response status for failures of this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindState:
		return http.StatusConflict
	case KindEconomic:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error is a typed failure reason.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinel-style checks work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithDetails attaches context such as a budget shortfall.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code, format string, args ...interface{}) *Error {
	return newError(KindValidation, code, format, args...)
}

func State(code, format string, args ...interface{}) *Error {
	return newError(KindState, code, format, args...)
}

func Economic(code, format string, args ...interface{}) *Error {
	return newError(KindEconomic, code, format, args...)
}

func NotFound(code, format string, args ...interface{}) *Error {
	return newError(KindNotFound, code, format, args...)
}

// Transient reports a failure that is safe to retry later.
func Transient(code string, err error) *Error {
	return &Error{Kind: KindTransient, Code: code, Message: "The request conflicted with a concurrent update, please retry", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: message, Err: err}
}

// From returns the *Error in err's chain, or nil.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// KindOf reports the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	if appErr := From(err); appErr != nil {
		return appErr.Kind
	}
	return KindInternal
}

// HasCode reports whether err carries the given failure code.
func HasCode(err error, code string) bool {
	appErr := From(err)
	return appErr != nil && appErr.Code == code
}

// Stable failure codes.
const (
	CodeNoActiveWindow       = "no_active_window"
	CodeNoTransferWindow     = "no_transfer_window"
	CodeWrongPhase           = "wrong_phase"
	CodeWindowAlreadyOpen    = "window_already_open"
	CodeNoUpcomingGameweek   = "no_upcoming_gameweek"
	CodeIllegalTransition    = "illegal_transition"
	CodeInvalidSquadSize     = "invalid_squad_size"
	CodeInvalidPlayers       = "invalid_players"
	CodeTeamLimitExceeded    = "team_limit_exceeded"
	CodePositionQuota        = "position_quota"
	CodeStarterCount         = "starter_count"
	CodeCaptaincy            = "captaincy"
	CodePlayerNotInSquad     = "player_not_in_squad"
	CodePlayerAlreadyInSquad = "player_already_in_squad"
	CodeSamePlayer           = "same_player"
	CodeInsufficientBudget   = "insufficient_budget"
	CodeInvalidSubstitution  = "invalid_substitution"
	CodeFormation            = "formation"
	CodeNoGameweekState      = "no_gameweek_state"
	CodeManagerNotFound      = "manager_not_found"
	CodeGameweekNotFound     = "gameweek_not_found"
	CodePlayerNotFound       = "player_not_found"
	CodeFixtureNotFound      = "fixture_not_found"
	CodeTeamNotFound         = "team_not_found"
	CodeDuplicateGameweek    = "duplicate_gameweek"
	CodeInvalidGameweek      = "invalid_gameweek"
	CodeInvalidFixture       = "invalid_fixture"
	CodeInvalidStat          = "invalid_stat"
	CodeRetriesExhausted     = "conflict_retries_exhausted"
)
