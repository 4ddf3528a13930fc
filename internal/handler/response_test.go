package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestError_StatusMapping(t *testing.T) {
	rs := NewResponder(false, logger.NewNop())
	cases := []struct {
		name   string
		err    error
		status int
		state  string
	}{
		{"not found", domain.NotFound("No company for this id x"), http.StatusNotFound, StatusFail},
		{"validation", domain.Validation("name is required", map[string]string{"name": "name is required"}), http.StatusBadRequest, StatusFail},
		{"bad request", domain.BadRequest("Invalid request body"), http.StatusBadRequest, StatusFail},
		{"conflict", domain.Conflict("Coupon usage limit reached"), http.StatusConflict, StatusFail},
		{"unauthorized", domain.Unauthorized("Invalid token, please login again"), http.StatusUnauthorized, StatusFail},
		{"forbidden", domain.Forbidden("nope"), http.StatusForbidden, StatusFail},
		{"too many", domain.TooManyRequests("slow down"), http.StatusTooManyRequests, StatusFail},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, StatusError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rs.Error(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.Equal(t, tc.state, body["status"])
			assert.NotContains(t, body, "stack")
			assert.NotContains(t, body, "error")
		})
	}
}

func TestError_ValidationFieldsAreReturned(t *testing.T) {
	rs := NewResponder(false, logger.NewNop())
	rec := httptest.NewRecorder()
	rs.Error(rec, httptest.NewRequest(http.MethodPost, "/x", nil),
		domain.Validation("name is required", map[string]string{"name": "name is required"}))

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "name is required", body["message"])
	assert.Equal(t, map[string]interface{}{"name": "name is required"}, body["errors"])
}

func TestError_InternalHidesCauseInProduction(t *testing.T) {
	rs := NewResponder(false, logger.NewNop())
	rec := httptest.NewRecorder()
	rs.Error(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("mongo: connection refused"))

	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestError_DevelopmentIncludesStack(t *testing.T) {
	rs := NewResponder(true, logger.NewNop())
	rec := httptest.NewRecorder()
	rs.Error(rec, httptest.NewRequest(http.MethodGet, "/x", nil), domain.NotFound("missing"))

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "missing", body["error"])
	assert.NotEmpty(t, body["stack"])
}

func TestError_TooManyRequestsSetsRetryAfter(t *testing.T) {
	rs := NewResponder(false, logger.NewNop())
	rec := httptest.NewRecorder()
	rs.Error(rec, httptest.NewRequest(http.MethodGet, "/x", nil), domain.TooManyRequests("slow down"))

	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestNotFound(t *testing.T) {
	rs := NewResponder(false, logger.NewNop())
	rec := httptest.NewRecorder()
	rs.NotFound(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Can't find this route: /api/v1/nope", decodeEnvelope(t, rec)["message"])
}

func TestList_WritesCountAndPagination(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, &crud.ListResult[domain.Mia]{
		Results:          1,
		PaginationResult: query.Paginate(1, 5, 1),
		Data:             []domain.Mia{{Question: "How do I post?"}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Equal(t, float64(1), body["results"])
	assert.Contains(t, body, "paginationResult")
	assert.Len(t, body["data"], 1)
}

func TestList_EmptyPageKeepsZeroResults(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, &crud.ListResult[domain.Mia]{Data: []domain.Mia{}, PaginationResult: query.Paginate(1, 5, 0)})

	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(0), body["results"])
	assert.Equal(t, []interface{}{}, body["data"])
}
