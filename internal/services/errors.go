package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotAuthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "NotAuthenticated"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindInvalidState:
		return "InvalidState"
	case KindValidation:
		return "ValidationError"
	}
	return "Internal"
}

// Error is a terminal, caller-visible failure. Reason is safe to show to
// clients and never carries storage detail.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Reason
}

// Is matches on kind and reason so freshly built errors compare equal to
// the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

var (
	ErrNotAuthenticated = &Error{Kind: KindNotAuthenticated, Reason: "authentication required"}

	ErrVideoNotFound   = &Error{Kind: KindNotFound, Reason: "video not found"}
	ErrSessionNotFound = &Error{Kind: KindNotFound, Reason: "live session not found"}
	ErrReportNotFound  = &Error{Kind: KindNotFound, Reason: "report not found"}
	ErrNotLiked        = &Error{Kind: KindNotFound, Reason: "NotLiked"}
	ErrNotMuted        = &Error{Kind: KindNotFound, Reason: "NotMuted"}

	ErrAlreadyLiked    = &Error{Kind: KindConflict, Reason: "AlreadyLiked"}
	ErrAlreadyReported = &Error{Kind: KindConflict, Reason: "AlreadyReported"}
	ErrAlreadyMuted    = &Error{Kind: KindConflict, Reason: "AlreadyMuted"}
	ErrSessionLinked   = &Error{Kind: KindConflict, Reason: "live session already has a video"}
	ErrVideoLinked     = &Error{Kind: KindConflict, Reason: "video already belongs to a live session"}

	ErrMuted            = &Error{Kind: KindForbidden, Reason: "Muted"}
	ErrNotCreator       = &Error{Kind: KindForbidden, Reason: "creator, staff or admin role required"}
	ErrNotOwner         = &Error{Kind: KindForbidden, Reason: "only the owner or an admin may do this"}
	ErrNotHost          = &Error{Kind: KindForbidden, Reason: "only the host, staff or an admin may do this"}
	ErrNotModerator     = &Error{Kind: KindForbidden, Reason: "staff or admin role required"}

	ErrSessionNotActive = &Error{Kind: KindInvalidState, Reason: "SessionNotActive"}
	ErrVideoRemoved     = &Error{Kind: KindInvalidState, Reason: "video has been removed"}
	ErrReportClosed     = &Error{Kind: KindInvalidState, Reason: "report already resolved"}
	ErrVideoFlagged     = &Error{Kind: KindInvalidState, Reason: "flagged video can only be republished by an admin"}
)

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
