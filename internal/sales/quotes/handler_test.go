package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-hq/fieldline/internal/documents"
	"github.com/fieldline-hq/fieldline/internal/platform/httpx"
	"github.com/fieldline-hq/fieldline/internal/shared"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestRespondErrorUpstreamDetailIsGeneric(t *testing.T) {
	h := &Handler{logger: testLogger()}
	rec := httptest.NewRecorder()

	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	h.respondError(rec, "generate quote pdf",
		fmt.Errorf("load customer 7: %w: %w", documents.ErrUpstreamData, cause))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "Upstream Data Error", problem.Title)
	assert.NotContains(t, problem.Detail, "10.0.0.5")
	assert.NotContains(t, problem.Detail, "connection refused")
}

func TestRespondErrorNotFoundDetailIsGeneric(t *testing.T) {
	h := &Handler{logger: testLogger()}
	rec := httptest.NewRecorder()

	h.respondError(rec, "show quote",
		fmt.Errorf("select quote 999 from quotes_v2: %w", shared.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "quote not found", problem.Detail)
	assert.NotContains(t, problem.Detail, "quotes_v2")
}

func TestRespondErrorUnknownErrorIsOpaque(t *testing.T) {
	h := &Handler{logger: testLogger()}
	rec := httptest.NewRecorder()

	h.respondError(rec, "list quotes", errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Empty(t, problem.Detail)
}
