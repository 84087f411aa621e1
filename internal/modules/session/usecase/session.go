package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"lectern/internal/modules/session/domain"
	sessiondto "lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/modules/session/service"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logging"
)

const defaultCloseTimeout = 3 * time.Second

type Options struct {
	Identity     sessionout.IdentityPort
	Catalog      sessionout.CatalogPort
	ActiveStore  sessionout.ActiveSessionStore
	Journal      sessionout.JournalStore
	CloseTimeout time.Duration
	Logger       *log.Logger
}

// Interactor serialises access to the active session. The TUI issues
// commands from concurrent goroutines, so every load-modify-save of the
// active session happens under mu.
type Interactor struct {
	ctrl         *service.Controller
	identity     sessionout.IdentityPort
	catalog      sessionout.CatalogPort
	activeStore  sessionout.ActiveSessionStore
	journal      sessionout.JournalStore
	closeTimeout time.Duration
	logger       *log.Logger

	mu sync.Mutex
}

func NewInteractor(ctrl *service.Controller, opts Options) sessionin.Usecase {
	timeout := opts.CloseTimeout
	if timeout <= 0 {
		timeout = defaultCloseTimeout
	}
	return &Interactor{
		ctrl:         ctrl,
		identity:     opts.Identity,
		catalog:      opts.Catalog,
		activeStore:  opts.ActiveStore,
		journal:      opts.Journal,
		closeTimeout: timeout,
		logger:       logging.OrDiscard(opts.Logger),
	}
}

func (i *Interactor) Open(ctx context.Context, input sessiondto.OpenInput) (sessiondto.SessionOutput, error) {
	if input.BookID <= 0 {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: book id must be positive", apperrors.ErrInvalidInput)
	}
	userID, err := i.identity.CurrentUserID(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	active, err := i.activeStore.LoadActive(ctx)
	switch {
	case err == nil:
		if active.BookID == input.BookID && active.UserID == userID && !active.Offline {
			out := toOutput(active)
			out.Resumed = true
			return out, nil
		}
		if active.BookID != input.BookID || active.UserID != userID {
			if _, err := i.closeLocked(ctx, active, sessionin.TriggerSwitch); err != nil {
				return sessiondto.SessionOutput{}, err
			}
		}
	case errors.Is(err, apperrors.ErrNoActiveSession):
	default:
		return sessiondto.SessionOutput{}, err
	}

	book, err := i.catalog.Book(ctx, input.BookID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	session, initErr := i.ctrl.Open(ctx, userID, input.BookID, book)
	var sessionInit *apperrors.SessionInitError
	if initErr != nil && !errors.As(initErr, &sessionInit) {
		return sessiondto.SessionOutput{}, initErr
	}
	if active.Offline && active.BookID == input.BookID && active.UserID == userID {
		session = mergeOffline(session, active)
	}
	if err := i.activeStore.SaveActive(ctx, session); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(session), initErr
}

// mergeOffline carries local paging done while offline into a session that
// has since been resolved against the progress store.
func mergeOffline(resolved, offline domain.ReadingSession) domain.ReadingSession {
	resolved.LocalID = offline.LocalID
	resolved.OpenedAt = offline.OpenedAt
	resolved.StartPage = offline.StartPage
	if offline.TotalSource == domain.TotalDocument {
		resolved.ResolveTotalPages(offline.TotalPages)
	}
	if offline.CurrentPage > resolved.CurrentPage {
		resolved.SetPage(offline.CurrentPage)
	}
	return resolved
}

func (i *Interactor) Turn(ctx context.Context, delta int) (sessiondto.SessionOutput, error) {
	return i.navigate(ctx, func(session *domain.ReadingSession) bool {
		return session.Turn(delta)
	})
}

func (i *Interactor) SetPage(ctx context.Context, page int) (sessiondto.SessionOutput, error) {
	return i.navigate(ctx, func(session *domain.ReadingSession) bool {
		return i.ctrl.SetPage(session, page)
	})
}

func (i *Interactor) navigate(ctx context.Context, move func(*domain.ReadingSession) bool) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	session, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	changed := move(&session)
	if changed {
		if err := i.activeStore.SaveActive(ctx, session); err != nil {
			return sessiondto.SessionOutput{}, err
		}
	}
	out := toOutput(session)
	out.Changed = changed
	return out, nil
}

func (i *Interactor) ResolveTotalPages(ctx context.Context, bookID int64, count int) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	session, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if session.BookID != bookID {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: page count for book %d but book %d is open", apperrors.ErrNoActiveSession, bookID, session.BookID)
	}
	changed := i.ctrl.ResolveTotalPages(&session, count)
	if changed {
		if err := i.activeStore.SaveActive(ctx, session); err != nil {
			return sessiondto.SessionOutput{}, err
		}
	}
	out := toOutput(session)
	out.Changed = changed
	return out, nil
}

// Flush persists the active session. The progress-store call runs outside the
// lock so navigation is never blocked on the network; the result is recorded
// only if the same session is still active.
func (i *Interactor) Flush(ctx context.Context, trigger string) (sessiondto.FlushOutput, error) {
	i.mu.Lock()
	snapshot, err := i.activeStore.LoadActive(ctx)
	i.mu.Unlock()
	if err != nil {
		return sessiondto.FlushOutput{}, err
	}

	persisted, flushErr := i.ctrl.Flush(ctx, &snapshot)
	out := sessiondto.FlushOutput{Persisted: persisted, Page: snapshot.CurrentPage, Status: string(snapshot.Status())}
	if flushErr != nil {
		out.Warning = flushErr.Error()
		return out, nil
	}
	if !persisted {
		return out, nil
	}
	i.logger.Debug("flushed", "trigger", trigger, "book", snapshot.BookID, "page", snapshot.CurrentPage)

	i.mu.Lock()
	defer i.mu.Unlock()
	current, err := i.activeStore.LoadActive(ctx)
	if err != nil || current.LocalID != snapshot.LocalID {
		return out, nil
	}
	current.MarkPersisted(snapshot.PersistedPage, snapshot.PersistedStatus)
	if err := i.activeStore.SaveActive(ctx, current); err != nil {
		return out, err
	}
	return out, nil
}

func (i *Interactor) Close(ctx context.Context, trigger string) (sessiondto.CloseOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	session, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.CloseOutput{}, err
	}
	return i.closeLocked(ctx, session, trigger)
}

func (i *Interactor) closeLocked(ctx context.Context, session domain.ReadingSession, trigger string) (sessiondto.CloseOutput, error) {
	entry := i.ctrl.Close(ctx, &session, trigger, i.closeTimeout)
	out := sessiondto.CloseOutput{
		SessionID:   entry.SessionID,
		BookID:      entry.BookID,
		EndPage:     entry.EndPage,
		Status:      string(entry.Status),
		Persisted:   entry.Persisted,
		Warning:     entry.Warning,
		DurationMin: entry.DurationMin,
	}
	if i.journal != nil {
		path, err := i.journal.Save(context.WithoutCancel(ctx), entry)
		if err != nil {
			i.logger.Warn("write reading journal", "book", entry.BookID, "err", err)
		} else {
			out.JournalPath = path
		}
	}
	if err := i.activeStore.ClearActive(context.WithoutCancel(ctx)); err != nil {
		return out, err
	}
	i.logger.Info("closed reading session", "book", entry.BookID, "page", entry.EndPage, "trigger", trigger, "persisted", entry.Persisted)
	return out, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	session, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

func toOutput(session domain.ReadingSession) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		LocalID:     session.LocalID,
		SessionID:   session.SessionID,
		BookID:      session.BookID,
		BookTitle:   session.BookTitle,
		CurrentPage: session.CurrentPage,
		TotalPages:  session.TotalPages,
		TotalSource: string(session.TotalSource),
		Status:      string(session.Status()),
		OpenedAt:    session.OpenedAt,
		Offline:     session.Offline,
		Dirty:       session.NeedsFlush(),
	}
}
