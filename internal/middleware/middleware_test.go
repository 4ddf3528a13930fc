package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/handler"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubAuthenticator struct {
	tokens map[string]domain.Actor
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Actor, error) {
	actor, ok := s.tokens[token]
	if !ok {
		return domain.Actor{}, domain.Unauthorized("Invalid token, please login again")
	}
	return actor, nil
}

var (
	adminActor = domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}
	userActor  = domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}
)

func newTestAuth() *Auth {
	return NewAuth(stubAuthenticator{tokens: map[string]domain.Actor{
		"admin-token": adminActor,
		"user-token":  userActor,
	}}, handler.NewResponder(false, logger.NewNop()))
}

// echoActor writes the caller's role, or "anonymous".
var echoActor = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	actor := domain.ActorFrom(r.Context())
	if actor.IsAnonymous() {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(actor.Role))
})

func request(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env handler.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Message
}

func TestRequireAuth(t *testing.T) {
	h := newTestAuth().RequireAuth(echoActor)

	rec := request(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgNotLoggedIn, message(t, rec))

	rec = request(h, "Basic user-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(h, "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token, please login again", message(t, rec))

	rec = request(h, "Bearer user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", rec.Body.String())

	rec = request(h, "bearer admin-token")
	assert.Equal(t, "admin", rec.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	h := newTestAuth().OptionalAuth(echoActor)

	assert.Equal(t, "anonymous", request(h, "").Body.String())
	assert.Equal(t, "anonymous", request(h, "Bearer forged").Body.String())
	assert.Equal(t, "user", request(h, "Bearer user-token").Body.String())
}

func TestRequireRoles(t *testing.T) {
	a := newTestAuth()
	h := a.RequireAuth(a.RequireRoles(domain.RoleAdmin, domain.RoleManager)(echoActor))

	assert.Equal(t, http.StatusForbidden, request(h, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, request(h, "Bearer admin-token").Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 0.001, 2, handler.NewResponder(false, logger.NewNop()))
	h := rl.Middleware(echoActor)

	from := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, from("10.0.0.1:1001").Code)
	limited := from("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, from("10.0.0.2:1000").Code)
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1, handler.NewResponder(false, logger.NewNop()))
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(visitorTTL + time.Second)
	rl.allow("10.0.0.2")
	rl.evict()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRecovery(t *testing.T) {
	h := Recovery(handler.NewResponder(false, logger.NewNop()), logger.NewNop())(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	)

	rec := request(h, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := metrics.NewMetricsManager("adwall-test")
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/companies/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/companies/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/companies/{id}", http.MethodGet, "404")))
}

func TestRequestLoggerAndTracingPassThrough(t *testing.T) {
	h := RequestLogger(logger.NewNop())(Tracing("adwall-test")(echoActor))

	rec := request(h, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}
