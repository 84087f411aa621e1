package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"lectern/internal/modules/progress/domain"
	"lectern/internal/modules/progress/dto"
	"lectern/internal/modules/progress/service"
	"lectern/internal/modules/progress/usecase"
	apperrors "lectern/internal/platform/errors"
)

type fakeGateway struct {
	mu         sync.Mutex
	records    map[int64]domain.Record
	nextID     int
	updates    []string
	failStatus map[domain.Status]bool
	failPages  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{records: map[int64]domain.Record{}, failStatus: map[domain.Status]bool{}}
}

func (f *fakeGateway) Lookup(_ context.Context, _ int64, bookID int64) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[bookID]
	if !ok {
		return domain.Record{}, apperrors.ErrNotFound
	}
	return record, nil
}

func (f *fakeGateway) Create(_ context.Context, bookID int64, page int, status domain.Status) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record := domain.Record{ID: fmt.Sprintf("r-%d", f.nextID), BookID: bookID, Page: page, Status: status}
	f.records[bookID] = record
	return domain.Record{ID: record.ID}, nil
}

func (f *fakeGateway) Update(_ context.Context, id string, page int, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fmt.Sprintf("%s:%d:%s", id, page, status))
	return nil
}

func (f *fakeGateway) ListByStatus(_ context.Context, status domain.Status) ([]domain.Record, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatus[status] {
		return nil, 0, errors.New("backend down")
	}
	out := []domain.Record{}
	for _, record := range f.records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out, len(out), nil
}

func (f *fakeGateway) PagesRead(context.Context) (int, error) {
	if f.failPages {
		return 0, errors.New("backend down")
	}
	return 120, nil
}

func TestCreateFillsDefaultsFromRequest(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	uc := usecase.NewInteractor(service.NewProgressService(gw, nil))

	out, err := uc.Create(context.Background(), dto.CreateInput{BookID: 7})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.ID != "r-1" || out.Page != 1 || out.Status != "in_progress" || out.BookID != 7 {
		t.Fatalf("unexpected record %+v", out)
	}
	found, err := uc.Lookup(context.Background(), dto.LookupInput{UserID: 4, BookID: 7})
	if err != nil || found.ID != "r-1" {
		t.Fatalf("lookup after create: %+v err=%v", found, err)
	}
	if _, err := uc.Lookup(context.Background(), dto.LookupInput{UserID: 4, BookID: 8}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateValidatesInput(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	uc := usecase.NewInteractor(service.NewProgressService(gw, nil))

	if err := uc.Update(context.Background(), dto.UpdateInput{ID: "", Page: 3}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing id, got %v", err)
	}
	if err := uc.Update(context.Background(), dto.UpdateInput{ID: "r-1", Page: 0}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for page 0, got %v", err)
	}
	if err := uc.Update(context.Background(), dto.UpdateInput{ID: "r-1", Page: 3, Status: "paused"}); err == nil {
		t.Fatalf("unknown status should fail")
	}
	if err := uc.Update(context.Background(), dto.UpdateInput{ID: "r-1", Page: 3}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(gw.updates) != 1 || gw.updates[0] != "r-1:3:in_progress" {
		t.Fatalf("unexpected updates %v", gw.updates)
	}
}

func TestStatsDegradesFailingFiguresToZero(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	gw.records[1] = domain.Record{ID: "a", BookID: 1, Status: domain.StatusCompleted}
	gw.records[2] = domain.Record{ID: "b", BookID: 2, Status: domain.StatusInProgress}
	gw.records[3] = domain.Record{ID: "c", BookID: 3, Status: domain.StatusInProgress}
	uc := usecase.NewInteractor(service.NewProgressService(gw, nil))

	stats, err := uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats != (dto.StatsOutput{Completed: 1, InProgress: 2, PagesRead: 120}) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	gw.failStatus[domain.StatusInProgress] = true
	gw.failPages = true
	stats, err = uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats with failures: %v", err)
	}
	if stats != (dto.StatsOutput{Completed: 1}) {
		t.Fatalf("expected degraded stats, got %+v", stats)
	}

	inProgress, err := uc.InProgress(context.Background())
	if err == nil || inProgress != nil {
		t.Fatalf("listing should surface the backend error")
	}
}
