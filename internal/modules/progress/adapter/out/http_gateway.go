package out

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"lectern/internal/modules/progress/domain"
	progressout "lectern/internal/modules/progress/port/out"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/httpapi"
)

var wireStatus = map[domain.Status]string{
	domain.StatusNotStarted: "no_iniciado",
	domain.StatusInProgress: "en_progreso",
	domain.StatusCompleted:  "completado",
	domain.StatusAbandoned:  "abandonado",
}

var statusPaths = map[domain.Status]string{
	domain.StatusCompleted:  "/lecturas/estado/completados",
	domain.StatusInProgress: "/lecturas/estado/en-progreso",
}

type HTTPGateway struct {
	client *httpapi.Client
}

func NewHTTPGateway(client *httpapi.Client) progressout.Gateway {
	return &HTTPGateway{client: client}
}

type lectura struct {
	ID             int64   `json:"idLectura"`
	UserID         int64   `json:"idUsuario"`
	BookID         int64   `json:"idLibro"`
	State          string  `json:"estado"`
	Page           int     `json:"paginaLeidas"`
	BookTitle      string  `json:"libro_titulo"`
	BookTotalPages int     `json:"libro_total_paginas"`
	Percent        float64 `json:"progreso_porcentaje"`
	SignedURL      *string `json:"url_firmada"`
	CoverURL       *string `json:"urlPortada"`
}

type createRequest struct {
	Page   int    `json:"paginaLeidas"`
	State  string `json:"estado"`
	BookID int64  `json:"idLibro"`
}

type updateRequest struct {
	Page  int    `json:"paginaLeidas"`
	State string `json:"estado"`
}

type pagesReadData struct {
	TotalPagesRead int `json:"total_paginas_leidas"`
}

func (g *HTTPGateway) Lookup(ctx context.Context, userID, bookID int64) (domain.Record, error) {
	data := lectura{}
	env, err := g.client.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/lecturas/libro/%d", bookID),
	}, &data)
	if err != nil {
		return domain.Record{}, fmt.Errorf("lookup reading record for book %d: %w", bookID, err)
	}
	if !env.HasData() || data.ID == 0 {
		return domain.Record{}, apperrors.ErrNotFound
	}
	if userID != 0 && data.UserID != 0 && data.UserID != userID {
		return domain.Record{}, apperrors.ErrNotFound
	}
	return data.toDomain(), nil
}

func (g *HTTPGateway) Create(ctx context.Context, bookID int64, page int, status domain.Status) (domain.Record, error) {
	state, err := toWire(status)
	if err != nil {
		return domain.Record{}, err
	}
	data := lectura{}
	_, err = g.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/lecturas",
		Body:   createRequest{Page: page, State: state, BookID: bookID},
	}, &data)
	if err != nil {
		return domain.Record{}, fmt.Errorf("create reading record for book %d: %w", bookID, err)
	}
	if data.ID == 0 {
		return domain.Record{}, fmt.Errorf("create reading record for book %d: response carried no idLectura", bookID)
	}
	return data.toDomain(), nil
}

func (g *HTTPGateway) Update(ctx context.Context, id string, page int, status domain.Status) error {
	state, err := toWire(status)
	if err != nil {
		return err
	}
	_, err = g.client.Do(ctx, httpapi.Request{
		Method: http.MethodPut,
		Path:   "/lecturas/" + id,
		Body:   updateRequest{Page: page, State: state},
	}, nil)
	if err != nil {
		return fmt.Errorf("update reading record %s: %w", id, err)
	}
	return nil
}

func (g *HTTPGateway) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Record, int, error) {
	path, ok := statusPaths[status]
	if !ok {
		return nil, 0, fmt.Errorf("%w: no listing for status %q", apperrors.ErrInvalidInput, status)
	}
	data := []lectura{}
	env, err := g.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: path}, &data)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s reading records: %w", status, err)
	}
	records := make([]domain.Record, 0, len(data))
	for _, item := range data {
		records = append(records, item.toDomain())
	}
	count := len(records)
	if env.Count != nil {
		count = *env.Count
	}
	return records, count, nil
}

func (g *HTTPGateway) PagesRead(ctx context.Context) (int, error) {
	data := pagesReadData{}
	_, err := g.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/lecturas/estadisticas/paginas-leidas"}, &data)
	if err != nil {
		return 0, fmt.Errorf("pages read: %w", err)
	}
	return data.TotalPagesRead, nil
}

func toWire(status domain.Status) (string, error) {
	state, ok := wireStatus[status]
	if !ok {
		return "", fmt.Errorf("%w: reading status %q", apperrors.ErrInvalidInput, status)
	}
	return state, nil
}

func fromWire(state string) domain.Status {
	for status, wire := range wireStatus {
		if wire == state {
			return status
		}
	}
	return domain.StatusInProgress
}

func (l lectura) toDomain() domain.Record {
	record := domain.Record{
		ID:             strconv.FormatInt(l.ID, 10),
		UserID:         l.UserID,
		BookID:         l.BookID,
		Page:           l.Page,
		Status:         fromWire(l.State),
		BookTitle:      l.BookTitle,
		BookTotalPages: l.BookTotalPages,
		Percent:        l.Percent,
	}
	if l.SignedURL != nil {
		record.DocumentURL = *l.SignedURL
	}
	if l.CoverURL != nil {
		record.CoverURL = *l.CoverURL
	}
	return record
}
