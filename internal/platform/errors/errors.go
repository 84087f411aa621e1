package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoActiveSession  = errors.New("no active reading session")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("unauthorized")
)

// SessionInitError reports that a reading session could not be resolved or
// created. The reader may keep paging offline without persistence.
type SessionInitError struct {
	BookID    int64
	LookupErr error
	CreateErr error
}

func (e *SessionInitError) Error() string {
	switch {
	case e.LookupErr != nil && e.CreateErr != nil:
		return fmt.Sprintf("init reading session for book %d: lookup: %v; create: %v", e.BookID, e.LookupErr, e.CreateErr)
	case e.CreateErr != nil:
		return fmt.Sprintf("init reading session for book %d: create: %v", e.BookID, e.CreateErr)
	default:
		return fmt.Sprintf("init reading session for book %d: %v", e.BookID, e.LookupErr)
	}
}

func (e *SessionInitError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.LookupErr != nil {
		out = append(out, e.LookupErr)
	}
	if e.CreateErr != nil {
		out = append(out, e.CreateErr)
	}
	return out
}

// DocumentUnavailableError reports a failed document fetch or parse. It never
// affects the reading session record.
type DocumentUnavailableError struct {
	BookID int64
	Err    error
}

func (e *DocumentUnavailableError) Error() string {
	return fmt.Sprintf("document for book %d unavailable: %v", e.BookID, e.Err)
}

func (e *DocumentUnavailableError) Unwrap() error { return e.Err }

// PersistenceWarning is a non-fatal flush failure.
type PersistenceWarning struct {
	SessionID string
	Page      int
	Err       error
}

func (e *PersistenceWarning) Error() string {
	return fmt.Sprintf("persist reading session %s at page %d: %v", e.SessionID, e.Page, e.Err)
}

func (e *PersistenceWarning) Unwrap() error { return e.Err }
