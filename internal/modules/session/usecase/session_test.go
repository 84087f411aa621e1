package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sessionstore "lectern/internal/modules/session/adapter/out"
	"lectern/internal/modules/session/domain"
	sessiondto "lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/modules/session/service"
	"lectern/internal/modules/session/usecase"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
)

var errBackendDown = errors.New("dial tcp: connection refused")

type update struct {
	ID     string
	Page   int
	Status domain.Status
}

type fakeProgress struct {
	mu          sync.Mutex
	records     map[int64]sessionout.StoredProgress
	lookupErr   error
	createErr   error
	updateErr   error
	updateDelay time.Duration
	creates     int
	updates     []update
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{records: map[int64]sessionout.StoredProgress{}}
}

func (f *fakeProgress) Lookup(_ context.Context, _ int64, bookID int64) (sessionout.StoredProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return sessionout.StoredProgress{}, f.lookupErr
	}
	record, ok := f.records[bookID]
	if !ok {
		return sessionout.StoredProgress{}, apperrors.ErrNotFound
	}
	return record, nil
}

func (f *fakeProgress) Create(_ context.Context, bookID int64) (sessionout.StoredProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return sessionout.StoredProgress{}, f.createErr
	}
	f.creates++
	record := sessionout.StoredProgress{ID: fmt.Sprintf("rec-%d", bookID), Page: 1, Status: domain.StatusInProgress}
	f.records[bookID] = record
	return record, nil
}

func (f *fakeProgress) Update(ctx context.Context, id string, page int, status domain.Status) error {
	f.mu.Lock()
	delay, updateErr := f.updateDelay, f.updateErr
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if updateErr != nil {
		return updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update{ID: id, Page: page, Status: status})
	return nil
}

func (f *fakeProgress) setUpdateErr(err error) {
	f.mu.Lock()
	f.updateErr = err
	f.mu.Unlock()
}

func (f *fakeProgress) recorded() []update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]update(nil), f.updates...)
}

type fakeIdentity struct{ userID int64 }

func (f fakeIdentity) CurrentUserID(context.Context) (int64, error) {
	if f.userID == 0 {
		return 0, apperrors.ErrNotAuthenticated
	}
	return f.userID, nil
}

type fakeCatalog map[int64]sessionout.BookInfo

func (f fakeCatalog) Book(_ context.Context, bookID int64) (sessionout.BookInfo, error) {
	book, ok := f[bookID]
	if !ok {
		return sessionout.BookInfo{}, apperrors.ErrNotFound
	}
	return book, nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (f *fakeJournal) Save(_ context.Context, entry domain.JournalEntry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return fmt.Sprintf("journal/%d.md", len(f.entries)), nil
}

type seqID struct{ n atomic.Int64 }

func (s *seqID) New() string { return fmt.Sprintf("local-%d", s.n.Add(1)) }

type fixture struct {
	uc       sessionin.Usecase
	progress *fakeProgress
	journal  *fakeJournal
}

func newFixture(t *testing.T, closeTimeout time.Duration) fixture {
	t.Helper()
	progress := newFakeProgress()
	journal := &fakeJournal{}
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	ctrl := service.NewController(clock.Fixed(now), &seqID{}, progress, nil)
	uc := usecase.NewInteractor(ctrl, usecase.Options{
		Identity: fakeIdentity{userID: 7},
		Catalog: fakeCatalog{
			1: {Title: "Rayuela", PagesHint: 100},
			2: {Title: "Ficciones"},
		},
		ActiveStore:  sessionstore.NewFileActiveSessionStore(filepath.Join(t.TempDir(), "active-session.json")),
		Journal:      journal,
		CloseTimeout: closeTimeout,
	})
	return fixture{uc: uc, progress: progress, journal: journal}
}

func TestOpenCreatesRecordAtFirstPage(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()

	out, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out.SessionID != "rec-1" || out.CurrentPage != 1 || out.Status != string(domain.StatusInProgress) {
		t.Fatalf("unexpected new session: %+v", out)
	}
	if out.TotalPages != 100 || out.TotalSource != string(domain.TotalHint) {
		t.Fatalf("catalog hint not applied: %+v", out)
	}
	if f.progress.creates != 1 {
		t.Fatalf("expected one create, got %d", f.progress.creates)
	}
	flushed, err := f.uc.Flush(ctx, sessionin.TriggerBack)
	if err != nil || flushed.Persisted {
		t.Fatalf("page 1 should not be flushed: %+v err=%v", flushed, err)
	}
}

func TestOpenResumesStoredPage(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	f.progress.records[1] = sessionout.StoredProgress{ID: "rec-9", Page: 37, Status: domain.StatusInProgress}
	ctx := context.Background()

	out, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out.SessionID != "rec-9" || out.CurrentPage != 37 || out.Dirty {
		t.Fatalf("expected clean resume at page 37: %+v", out)
	}
	if f.progress.creates != 0 {
		t.Fatalf("resume must not create a record")
	}
	if _, err := f.uc.Flush(ctx, sessionin.TriggerBack); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := f.progress.recorded(); len(got) != 0 {
		t.Fatalf("unchanged resume should not write, got %+v", got)
	}
}

func TestOpenSameBookReturnsActiveSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.uc.SetPage(ctx, 12); err != nil {
		t.Fatalf("set page: %v", err)
	}
	out, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !out.Resumed || out.CurrentPage != 12 || f.progress.creates != 1 {
		t.Fatalf("expected the active session back: %+v creates=%d", out, f.progress.creates)
	}
}

func TestDocumentCountReplacesHintAndBoundsPaging(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	out, err := f.uc.ResolveTotalPages(ctx, 1, 42)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TotalPages != 42 || out.TotalSource != string(domain.TotalDocument) {
		t.Fatalf("document count not applied: %+v", out)
	}
	if out, _ = f.uc.SetPage(ctx, 43); out.Changed || out.CurrentPage != 1 {
		t.Fatalf("page past the document must be ignored: %+v", out)
	}
	if out, _ = f.uc.SetPage(ctx, 41); out.Status != string(domain.StatusInProgress) {
		t.Fatalf("page 41 of 42 should be in progress: %+v", out)
	}
	if out, _ = f.uc.Turn(ctx, 1); out.Status != string(domain.StatusCompleted) {
		t.Fatalf("page 42 of 42 should be completed: %+v", out)
	}
	if _, err := f.uc.ResolveTotalPages(ctx, 2, 10); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("count for another book should be rejected, got %v", err)
	}
}

func TestSetPageOutOfRangeIsNoop(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, page := range []int{0, -1, 101} {
		out, err := f.uc.SetPage(ctx, page)
		if err != nil {
			t.Fatalf("set page %d: %v", page, err)
		}
		if out.Changed || out.CurrentPage != 1 {
			t.Fatalf("set page %d should be ignored: %+v", page, out)
		}
	}
}

func TestFlushIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.uc.SetPage(ctx, 5); err != nil {
		t.Fatalf("set page: %v", err)
	}
	first, err := f.uc.Flush(ctx, sessionin.TriggerBack)
	if err != nil || !first.Persisted {
		t.Fatalf("first flush: %+v err=%v", first, err)
	}
	second, err := f.uc.Flush(ctx, sessionin.TriggerBack)
	if err != nil || second.Persisted {
		t.Fatalf("second flush should be a no-op: %+v err=%v", second, err)
	}
	got := f.progress.recorded()
	if len(got) != 1 || got[0] != (update{ID: "rec-1", Page: 5, Status: domain.StatusInProgress}) {
		t.Fatalf("expected a single write of page 5, got %+v", got)
	}
}

func TestCloseStoresFinalPageAndWritesJournal(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := f.uc.Turn(ctx, 1); err != nil {
			t.Fatalf("turn: %v", err)
		}
	}
	out, err := f.uc.Close(ctx, sessionin.TriggerQuit)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !out.Persisted || out.EndPage != 5 || out.Status != string(domain.StatusInProgress) || out.JournalPath == "" {
		t.Fatalf("unexpected close: %+v", out)
	}
	got := f.progress.recorded()
	if len(got) != 1 || got[0].Page != 5 {
		t.Fatalf("expected page 5 to be stored, got %+v", got)
	}
	if len(f.journal.entries) != 1 {
		t.Fatalf("expected one journal entry")
	}
	entry := f.journal.entries[0]
	if entry.StartPage != 1 || entry.EndPage != 5 || entry.Trigger != sessionin.TriggerQuit {
		t.Fatalf("unexpected journal entry: %+v", entry)
	}
	if _, err := f.uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("close should clear the active session, got %v", err)
	}
}

func TestFlushFailureIsAWarning(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.uc.SetPage(ctx, 8); err != nil {
		t.Fatalf("set page: %v", err)
	}
	f.progress.setUpdateErr(errBackendDown)

	out, err := f.uc.Flush(ctx, sessionin.TriggerBack)
	if err != nil {
		t.Fatalf("flush failure must not surface as an error: %v", err)
	}
	if out.Persisted || out.Warning == "" {
		t.Fatalf("expected a warning: %+v", out)
	}
	nav, err := f.uc.Turn(ctx, 1)
	if err != nil || nav.CurrentPage != 9 || !nav.Dirty {
		t.Fatalf("navigation should continue after a failed flush: %+v err=%v", nav, err)
	}

	f.progress.setUpdateErr(nil)
	out, err = f.uc.Flush(ctx, sessionin.TriggerBack)
	if err != nil || !out.Persisted || out.Page != 9 {
		t.Fatalf("flush should succeed once the store recovers: %+v err=%v", out, err)
	}
}

func TestOpenOfflineWhenStoreUnreachable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	f.progress.lookupErr = errBackendDown
	f.progress.createErr = errBackendDown
	ctx := context.Background()

	out, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1})
	var initErr *apperrors.SessionInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected SessionInitError, got %v", err)
	}
	if initErr.LookupErr == nil || initErr.CreateErr == nil {
		t.Fatalf("both failures should be reported: %+v", initErr)
	}
	if !out.Offline || out.CurrentPage != 1 {
		t.Fatalf("expected usable offline session: %+v", out)
	}
	if nav, err := f.uc.Turn(ctx, 3); err != nil || nav.CurrentPage != 4 {
		t.Fatalf("offline paging: %+v err=%v", nav, err)
	}
	closed, err := f.uc.Close(ctx, sessionin.TriggerQuit)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Persisted || closed.EndPage != 4 {
		t.Fatalf("offline close should not persist: %+v", closed)
	}
	if got := f.progress.recorded(); len(got) != 0 {
		t.Fatalf("offline session must not write, got %+v", got)
	}
}

func TestReopenAfterOfflineKeepsLocalPage(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	f.progress.createErr = errBackendDown
	ctx := context.Background()

	first, _ := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1})
	if _, err := f.uc.SetPage(ctx, 6); err != nil {
		t.Fatalf("set page: %v", err)
	}
	f.progress.mu.Lock()
	f.progress.createErr = nil
	f.progress.mu.Unlock()

	out, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if out.Offline || out.CurrentPage != 6 || out.LocalID != first.LocalID || !out.Dirty {
		t.Fatalf("expected online session carrying page 6: %+v", out)
	}
	if flushed, _ := f.uc.Flush(ctx, sessionin.TriggerBack); !flushed.Persisted {
		t.Fatalf("offline pages should flush once online")
	}
}

func TestOpenAnotherBookClosesPrevious(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.uc.SetPage(ctx, 5); err != nil {
		t.Fatalf("set page: %v", err)
	}
	out, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 2})
	if err != nil {
		t.Fatalf("open second book: %v", err)
	}
	if out.BookID != 2 || out.SessionID != "rec-2" || out.CurrentPage != 1 {
		t.Fatalf("unexpected second session: %+v", out)
	}
	got := f.progress.recorded()
	if len(got) != 1 || got[0].ID != "rec-1" || got[0].Page != 5 {
		t.Fatalf("previous book should be flushed, got %+v", got)
	}
	if len(f.journal.entries) != 1 || f.journal.entries[0].Trigger != sessionin.TriggerSwitch {
		t.Fatalf("expected switch journal entry, got %+v", f.journal.entries)
	}
}

func TestCloseFlushIsBounded(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 50*time.Millisecond)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.uc.SetPage(ctx, 3); err != nil {
		t.Fatalf("set page: %v", err)
	}
	f.progress.mu.Lock()
	f.progress.updateDelay = 5 * time.Second
	f.progress.mu.Unlock()

	started := time.Now()
	out, err := f.uc.Close(ctx, sessionin.TriggerSignal)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("close waited %s on a slow store", elapsed)
	}
	if out.Persisted || out.Warning == "" {
		t.Fatalf("timed out flush should be reported: %+v", out)
	}
}

func TestCloseFlushesAfterCancellation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.uc.SetPage(ctx, 20); err != nil {
		t.Fatalf("set page: %v", err)
	}
	cancel()
	out, err := f.uc.Close(ctx, sessionin.TriggerSignal)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !out.Persisted || out.EndPage != 20 {
		t.Fatalf("signal close should still persist: %+v", out)
	}
}

func TestConcurrentTurnsAreSerialised(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 2}); err != nil {
		t.Fatalf("open: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Turn(ctx, 1); err != nil {
				t.Errorf("turn: %v", err)
			}
		}()
	}
	wg.Wait()
	out, err := f.uc.GetActive(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if out.CurrentPage != 21 {
		t.Fatalf("expected page 21 after 20 turns, got %d", out.CurrentPage)
	}
}

func TestOpenRequiresIdentityAndValidBook(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Second)
	ctx := context.Background()
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 0}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.uc.Open(ctx, sessiondto.OpenInput{BookID: 404}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown book should abort open, got %v", err)
	}
	if _, err := f.uc.Turn(ctx, 1); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("turn without a session, got %v", err)
	}
}
