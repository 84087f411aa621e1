package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	progressout "lectern/internal/modules/progress/adapter/out"
	"lectern/internal/modules/progress/domain"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/httpapi"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func newGateway(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func clientFor(server *httptest.Server) *httpapi.Client {
	client := httpapi.New(server.URL, time.Second)
	client.SetTokenSource(staticToken("tok"))
	return client
}

func TestLookupDecodesRecord(t *testing.T) {
	server := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lecturas/libro/7":
			_, _ = w.Write([]byte(`{"success":true,"data":{"idLectura":31,"idUsuario":4,"idLibro":7,"estado":"en_progreso","paginaLeidas":12,"libro_titulo":"Cien años","libro_total_paginas":417,"progreso_porcentaje":2.9,"url_firmada":"https://cdn.example.edu/7.pdf","urlPortada":null}}`))
		case "/lecturas/libro/8":
			_, _ = w.Write([]byte(`{"success":true,"data":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	gw := progressout.NewHTTPGateway(clientFor(server))

	record, err := gw.Lookup(context.Background(), 4, 7)
	require.NoError(t, err)
	assert.Equal(t, "31", record.ID)
	assert.Equal(t, 12, record.Page)
	assert.Equal(t, domain.StatusInProgress, record.Status)
	assert.Equal(t, 417, record.BookTotalPages)
	assert.Equal(t, "https://cdn.example.edu/7.pdf", record.DocumentURL)
	assert.Empty(t, record.CoverURL)

	_, err = gw.Lookup(context.Background(), 5, 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "another user's record is not ours")

	_, err = gw.Lookup(context.Background(), 4, 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = gw.Lookup(context.Background(), 4, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateAndUpdateSendWireFields(t *testing.T) {
	var created, updated map[string]any
	server := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/lecturas":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			_, _ = w.Write([]byte(`{"success":true,"data":{"idLectura":55}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/lecturas/55":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	gw := progressout.NewHTTPGateway(clientFor(server))

	record, err := gw.Create(context.Background(), 7, 1, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, "55", record.ID)
	assert.Equal(t, map[string]any{"paginaLeidas": float64(1), "estado": "en_progreso", "idLibro": float64(7)}, created)

	require.NoError(t, gw.Update(context.Background(), "55", 42, domain.StatusCompleted))
	assert.Equal(t, map[string]any{"paginaLeidas": float64(42), "estado": "completado"}, updated)

	err = gw.Update(context.Background(), "56", 3, domain.StatusInProgress)
	var statusErr *httpapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestListByStatusAndPagesRead(t *testing.T) {
	server := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lecturas/estado/completados":
			_, _ = w.Write([]byte(`{"success":true,"data":[{"idLectura":1,"estado":"completado"},{"idLectura":2,"estado":"completado"}],"count":2}`))
		case "/lecturas/estado/en-progreso":
			_, _ = w.Write([]byte(`{"success":true,"data":[{"idLectura":3,"estado":"en_progreso"}]}`))
		case "/lecturas/estadisticas/paginas-leidas":
			_, _ = w.Write([]byte(`{"success":true,"data":{"total_paginas_leidas":640,"total_lecturas":3}}`))
		}
	})
	gw := progressout.NewHTTPGateway(clientFor(server))

	records, count, err := gw.ListByStatus(context.Background(), domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, domain.StatusCompleted, records[0].Status)

	_, count, err = gw.ListByStatus(context.Background(), domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "count falls back to the number of records")

	_, _, err = gw.ListByStatus(context.Background(), domain.StatusAbandoned)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	pages, err := gw.PagesRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 640, pages)
}
