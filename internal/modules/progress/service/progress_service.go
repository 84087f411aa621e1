package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"lectern/internal/modules/progress/domain"
	progressout "lectern/internal/modules/progress/port/out"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logging"
)

type ProgressService struct {
	gateway progressout.Gateway
	logger  *log.Logger
}

func NewProgressService(gateway progressout.Gateway, logger *log.Logger) *ProgressService {
	return &ProgressService{gateway: gateway, logger: logging.OrDiscard(logger)}
}

func (s *ProgressService) Lookup(ctx context.Context, userID, bookID int64) (domain.Record, error) {
	if bookID <= 0 {
		return domain.Record{}, fmt.Errorf("%w: book id must be positive", apperrors.ErrInvalidInput)
	}
	return s.gateway.Lookup(ctx, userID, bookID)
}

func (s *ProgressService) Create(ctx context.Context, bookID int64, page int, status domain.Status) (domain.Record, error) {
	if bookID <= 0 {
		return domain.Record{}, fmt.Errorf("%w: book id must be positive", apperrors.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}
	if status == "" {
		status = domain.StatusInProgress
	}
	record, err := s.gateway.Create(ctx, bookID, page, status)
	if err != nil {
		return domain.Record{}, err
	}
	if strings.TrimSpace(record.ID) == "" {
		return domain.Record{}, fmt.Errorf("create reading record for book %d: backend returned no id", bookID)
	}
	if record.BookID == 0 {
		record.BookID = bookID
	}
	if record.Page == 0 {
		record.Page = page
	}
	if record.Status == "" {
		record.Status = status
	}
	return record, nil
}

func (s *ProgressService) Update(ctx context.Context, id string, page int, status domain.Status) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: record id is required", apperrors.ErrInvalidInput)
	}
	if page < 1 {
		return fmt.Errorf("%w: page must be positive", apperrors.ErrInvalidInput)
	}
	return s.gateway.Update(ctx, id, page, status)
}

func (s *ProgressService) ByStatus(ctx context.Context, status domain.Status) ([]domain.Record, error) {
	records, _, err := s.gateway.ListByStatus(ctx, status)
	return records, err
}

// Stats gathers the three reading figures concurrently. A failing figure is
// reported as zero.
func (s *ProgressService) Stats(ctx context.Context) domain.Stats {
	stats := domain.Stats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, count, err := s.gateway.ListByStatus(gctx, domain.StatusCompleted)
		if err != nil {
			s.logger.Warn("completed count unavailable", "err", err)
			return nil
		}
		stats.Completed = count
		return nil
	})
	g.Go(func() error {
		_, count, err := s.gateway.ListByStatus(gctx, domain.StatusInProgress)
		if err != nil {
			s.logger.Warn("in-progress count unavailable", "err", err)
			return nil
		}
		stats.InProgress = count
		return nil
	})
	g.Go(func() error {
		pages, err := s.gateway.PagesRead(gctx)
		if err != nil {
			s.logger.Warn("pages read unavailable", "err", err)
			return nil
		}
		stats.PagesRead = pages
		return nil
	})
	_ = g.Wait()
	return stats
}
