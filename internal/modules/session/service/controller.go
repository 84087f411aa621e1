package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/id"
	"lectern/internal/platform/logging"
)

// Controller owns the reading-session state machine: resolving or creating
// the progress record, local navigation, and flushing at exit points.
type Controller struct {
	clock    clock.Clock
	idGen    id.Generator
	progress sessionout.ProgressStore
	logger   *log.Logger
}

func NewController(clock clock.Clock, idGen id.Generator, progress sessionout.ProgressStore, logger *log.Logger) *Controller {
	return &Controller{clock: clock, idGen: idGen, progress: progress, logger: logging.OrDiscard(logger)}
}

// Open looks up the stored record for (user, book) and resumes from it, or
// creates a new record at page 1. If neither succeeds the returned session is
// offline and the error is a *apperrors.SessionInitError.
func (c *Controller) Open(ctx context.Context, userID, bookID int64, book sessionout.BookInfo) (domain.ReadingSession, error) {
	if bookID <= 0 {
		return domain.ReadingSession{}, fmt.Errorf("%w: book id must be positive", apperrors.ErrInvalidInput)
	}
	session := domain.ReadingSession{
		LocalID:     c.idGen.New(),
		UserID:      userID,
		BookID:      bookID,
		BookTitle:   book.Title,
		CurrentPage: 1,
		OpenedAt:    c.clock.Now(),
	}

	stored, err := c.progress.Lookup(ctx, userID, bookID)
	if err == nil {
		session.SessionID = stored.ID
		session.CurrentPage = max(stored.Page, 1)
		session.MarkPersisted(stored.Page, stored.Status)
		c.logger.Info("resumed reading session", "session", stored.ID, "book", bookID, "page", session.CurrentPage)
	} else {
		var lookupErr error
		if !errors.Is(err, apperrors.ErrNotFound) {
			lookupErr = err
			c.logger.Warn("reading record lookup failed, creating a new one", "book", bookID, "err", err)
		}
		created, createErr := c.progress.Create(ctx, bookID)
		if createErr != nil {
			session.Offline = true
			session.StartPage = session.CurrentPage
			session.ApplyHint(book.PagesHint)
			c.logger.Warn("reading session offline", "book", bookID, "err", createErr)
			return session, &apperrors.SessionInitError{BookID: bookID, LookupErr: lookupErr, CreateErr: createErr}
		}
		session.SessionID = created.ID
		session.MarkPersisted(1, domain.StatusInProgress)
		c.logger.Info("created reading session", "session", created.ID, "book", bookID)
	}
	session.StartPage = session.CurrentPage
	session.ApplyHint(book.PagesHint)
	return session, nil
}

func (c *Controller) SetPage(session *domain.ReadingSession, page int) bool {
	return session.SetPage(page)
}

func (c *Controller) ResolveTotalPages(session *domain.ReadingSession, count int) bool {
	return session.ResolveTotalPages(count)
}

// Flush persists the current page and status when they differ from the last
// persisted state. A failed write is returned as *apperrors.PersistenceWarning
// after being logged; it is never retried.
func (c *Controller) Flush(ctx context.Context, session *domain.ReadingSession) (bool, error) {
	if !session.NeedsFlush() {
		return false, nil
	}
	page, status := session.CurrentPage, session.Status()
	if err := c.progress.Update(ctx, session.SessionID, page, status); err != nil {
		warning := &apperrors.PersistenceWarning{SessionID: session.SessionID, Page: page, Err: err}
		c.logger.Warn("flush failed", "session", session.SessionID, "page", page, "err", err)
		return false, warning
	}
	session.MarkPersisted(page, status)
	c.logger.Debug("flushed reading session", "session", session.SessionID, "page", page, "status", status)
	return true, nil
}

// Close flushes with a bounded wait that outlives cancellation of ctx, then
// builds the journal entry for the session.
func (c *Controller) Close(ctx context.Context, session *domain.ReadingSession, trigger string, timeout time.Duration) domain.JournalEntry {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	_, err := c.Flush(flushCtx, session)

	closedAt := c.clock.Now()
	duration := int(closedAt.Sub(session.OpenedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	entry := domain.JournalEntry{
		ID:          session.LocalID,
		SessionID:   session.SessionID,
		BookID:      session.BookID,
		BookTitle:   session.BookTitle,
		OpenedAt:    session.OpenedAt,
		ClosedAt:    closedAt,
		DurationMin: duration,
		StartPage:   session.StartPage,
		EndPage:     session.CurrentPage,
		TotalPages:  session.TotalPages,
		Status:      session.Status(),
		Trigger:     trigger,
		Persisted:   !session.Offline && err == nil,
		Offline:     session.Offline,
	}
	if err != nil {
		entry.Warning = err.Error()
	}
	return entry
}
