package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind groups error codes by how a caller should react to them.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation" // malformed input, never retried
	KindDomain     ErrorKind = "domain"     // caller may pick a different cycle action
	KindExternal   ErrorKind = "external"   // boundary failure, retry with backoff
	KindTerminal   ErrorKind = "terminal"   // stale state, re-fetch before any retry
	KindConflict   ErrorKind = "conflict"   // another cycle holds the show
)

// ErrorCode identifies a specific failure.
type ErrorCode string

const (
	CodeValidation            ErrorCode = "VALIDATION"
	CodeInvalidArity          ErrorCode = "INVALID_ARITY"
	CodeNoEligibleAgents      ErrorCode = "NO_ELIGIBLE_AGENTS"
	CodeInvalidDecisionFormat ErrorCode = "INVALID_DECISION_FORMAT"
	CodeUnknownAction         ErrorCode = "UNKNOWN_ACTION"
	CodeInvalidAgentReference ErrorCode = "INVALID_AGENT_REFERENCE"
	CodeChainRead             ErrorCode = "CHAIN_READ"
	CodeChainWrite            ErrorCode = "CHAIN_WRITE"
	CodeDecisionService       ErrorCode = "DECISION_SERVICE"
	CodeTimeout               ErrorCode = "TIMEOUT"
	CodeAlreadyEliminated     ErrorCode = "ALREADY_ELIMINATED"
	CodeShowInactive          ErrorCode = "SHOW_INACTIVE"
	CodeCycleInProgress       ErrorCode = "CYCLE_IN_PROGRESS"
)

var codeKinds = map[ErrorCode]ErrorKind{
	CodeValidation:            KindValidation,
	CodeInvalidArity:          KindValidation,
	CodeNoEligibleAgents:      KindDomain,
	CodeInvalidDecisionFormat: KindDomain,
	CodeUnknownAction:         KindDomain,
	CodeInvalidAgentReference: KindDomain,
	CodeChainRead:             KindExternal,
	CodeChainWrite:            KindExternal,
	CodeDecisionService:       KindExternal,
	CodeTimeout:               KindExternal,
	CodeAlreadyEliminated:     KindTerminal,
	CodeShowInactive:          KindTerminal,
	CodeCycleInProgress:       KindConflict,
}

// Error is the tagged error returned by the engine and its boundaries.
type Error struct {
	Code    ErrorCode
	Message string // human-readable reason
	Detail  string // raw text, offending id or underlying message
	Err     error

	// TxHash is set when a transaction was sent but its receipt never arrived.
	TxHash string
	// Unconfirmed marks a failure after writes may already have landed. Rerunning
	// the whole cycle could apply them twice, so it is never retried.
	Unconfirmed bool
}

// Sentinels for errors.Is matching. Comparison is by code only.
var (
	ErrValidation            = &Error{Code: CodeValidation}
	ErrInvalidArity          = &Error{Code: CodeInvalidArity}
	ErrNoEligibleAgents      = &Error{Code: CodeNoEligibleAgents}
	ErrInvalidDecisionFormat = &Error{Code: CodeInvalidDecisionFormat}
	ErrUnknownAction         = &Error{Code: CodeUnknownAction}
	ErrInvalidAgentReference = &Error{Code: CodeInvalidAgentReference}
	ErrChainRead             = &Error{Code: CodeChainRead}
	ErrChainWrite            = &Error{Code: CodeChainWrite}
	ErrDecisionService       = &Error{Code: CodeDecisionService}
	ErrTimeout               = &Error{Code: CodeTimeout}
	ErrAlreadyEliminated     = &Error{Code: CodeAlreadyEliminated}
	ErrShowInactive          = &Error{Code: CodeShowInactive}
	ErrCycleInProgress       = &Error{Code: CodeCycleInProgress}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Kind returns the category of the error's code.
func (e *Error) Kind() ErrorKind {
	if k, ok := codeKinds[e.Code]; ok {
		return k
	}
	return KindExternal
}

// Details returns the raw text surfaced to operators next to the reason.
func (e *Error) Details() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// HTTPStatus maps the error onto a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNoEligibleAgents:
		return http.StatusBadRequest
	case CodeInvalidDecisionFormat, CodeUnknownAction, CodeInvalidAgentReference:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	}
	switch e.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindTerminal, KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func newError(code ErrorCode, msg, detail string, err error) *Error {
	return &Error{Code: code, Message: msg, Detail: detail, Err: err}
}

func ValidationError(format string, args ...interface{}) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...), "", nil)
}

func InvalidArityError(action string, want, got int) *Error {
	return newError(CodeInvalidArity,
		fmt.Sprintf("action %s requires %d agent(s), got %d", action, want, got), "", nil)
}

func NoEligibleAgentsError(showID string) *Error {
	return newError(CodeNoEligibleAgents, "No eligible agents for elimination", "show "+showID, nil)
}

func InvalidDecisionFormatError(raw string) *Error {
	return newError(CodeInvalidDecisionFormat, "AI decision does not match action_name(id,...)", raw, nil)
}

func UnknownActionError(action string) *Error {
	return newError(CodeUnknownAction, "Unknown action", action, nil)
}

func InvalidAgentReferenceError(agentID string) *Error {
	return newError(CodeInvalidAgentReference, "Agent is not an eligible participant", agentID, nil)
}

func ChainReadError(op string, err error) *Error {
	return newError(CodeChainRead, "Failed to read "+op+" from chain", "", err)
}

func ChainWriteError(op string, err error) *Error {
	return newError(CodeChainWrite, "Failed to "+op+" on chain", "", err)
}

func DecisionServiceError(err error) *Error {
	return newError(CodeDecisionService, "Decision service request failed", "", err)
}

func TimeoutError(op string, err error) *Error {
	return newError(CodeTimeout, op+" timed out", "", err)
}

func AlreadyEliminatedError(agentID string) *Error {
	return newError(CodeAlreadyEliminated, "Agent already eliminated", agentID, nil)
}

func ShowInactiveError(showID string) *Error {
	return newError(CodeShowInactive, "Show is not active", showID, nil)
}

func CycleInProgressError(showID string) *Error {
	return newError(CodeCycleInProgress, "Another cycle is already running for this show", showID, nil)
}

// BoundaryError classifies a failure from an external call: context expiry becomes a
// TimeoutError, an existing *Error passes through, everything else goes to fallback.
func BoundaryError(op string, err error, fallback func(error) *Error) *Error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TimeoutError(op, err)
	}
	return fallback(err)
}

// AsError extracts the tagged error, if any.
func AsError(err error) (*Error, bool) {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged, true
	}
	return nil, false
}

// IsRetryable reports whether a caller may retry the failed operation with backoff.
func IsRetryable(err error) bool {
	tagged, ok := AsError(err)
	if !ok || tagged.Unconfirmed {
		return false
	}
	return tagged.Kind() == KindExternal
}
