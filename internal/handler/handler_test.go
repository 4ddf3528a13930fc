package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/payment"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// miaStore keeps FAQ entries in memory. Filters are ignored.
type miaStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]domain.Mia
}

func newMiaStore() *miaStore { return &miaStore{docs: map[primitive.ObjectID]domain.Mia{}} }

func (s *miaStore) Collection() string { return "mias" }

func (s *miaStore) Count(context.Context, bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

func (s *miaStore) Find(context.Context, crud.FindOptions) ([]domain.Mia, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Mia, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

func (s *miaStore) FindByID(_ context.Context, id primitive.ObjectID, _ ...crud.Populate) (*domain.Mia, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (s *miaStore) Insert(_ context.Context, doc *domain.Mia) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *miaStore) Replace(_ context.Context, id primitive.ObjectID, doc *domain.Mia) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	s.docs[id] = *doc
	return nil
}

func (s *miaStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func newMiaRouter(store *miaStore) http.Handler {
	factory := crud.NewFactory[domain.Mia, *domain.Mia](store, crud.Resource{
		Name:      "mia",
		Creatable: domain.MiaCreatable,
		Updatable: domain.MiaCreatable,
	}, crud.WithLogger(logger.NewNop()))
	h := NewMiaHandler(usecase.NewMiaService(factory), NewResponder(false, logger.NewNop()))

	r := chi.NewRouter()
	r.Get("/mia", h.List)
	r.Post("/mia", h.Create)
	r.Get("/mia/{id}", h.Get)
	r.Put("/mia/{id}", h.Update)
	r.Delete("/mia/{id}", h.Delete)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiaHandler_CRUD(t *testing.T) {
	store := newMiaStore()
	router := newMiaRouter(store)

	rec := serve(router, http.MethodPost, "/mia", `{"question":"How do I post an ad?","answer":"Subscribe first.","language":"en","order":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	id := data["_id"].(string)
	assert.Equal(t, true, data["isActive"])

	rec = serve(router, http.MethodGet, "/mia/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/mia", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeEnvelope(t, rec)["results"])

	rec = serve(router, http.MethodPut, "/mia/"+id, `{"answer":"Buy a plan, then post."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Buy a plan, then post.", decodeEnvelope(t, rec)["data"].(map[string]interface{})["answer"])

	rec = serve(router, http.MethodDelete, "/mia/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodDelete, "/mia/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiaHandler_CreateValidation(t *testing.T) {
	router := newMiaRouter(newMiaStore())

	rec := serve(router, http.MethodPost, "/mia", `{"question":"Hi","language":"fr"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, StatusFail, body["status"])
	assert.Contains(t, body["errors"], "answer")
}

func TestMiaHandler_InactiveHiddenFromPublic(t *testing.T) {
	store := newMiaStore()
	id := primitive.NewObjectID()
	store.docs[id] = domain.Mia{Base: domain.Base{ID: id}, Question: "Hidden?", Answer: "Yes", Language: "en"}

	rec := serve(newMiaRouter(store), http.MethodGet, "/mia/"+id.Hex(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiaHandler_MalformedID(t *testing.T) {
	rec := serve(newMiaRouter(newMiaStore()), http.MethodGet, "/mia/not-an-id", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentWebhook_RejectsBadSignature(t *testing.T) {
	h := NewSubscriptionHandler(nil, payment.NewVerifier("whsec"), NewResponder(false, logger.NewNop()))
	body := `{"id":"evt_1","type":"subscription.created","data":{"paymentSubscriptionId":"sub_1"}}`

	cases := map[string]string{
		"missing":  "",
		"not hex":  "zz",
		"mismatch": payment.NewVerifier("other").Sign([]byte(body)),
	}
	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
			req.Header.Set(payment.SignatureHeader, sig)
			rec := httptest.NewRecorder()
			h.PaymentWebhook(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestPaymentWebhook_RejectsIncompleteEvent(t *testing.T) {
	verifier := payment.NewVerifier("whsec")
	h := NewSubscriptionHandler(nil, verifier, NewResponder(false, logger.NewNop()))
	body := []byte(`{"id":"evt_1","type":"subscription.created","data":{}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(string(body)))
	req.Header.Set(payment.SignatureHeader, "sha256="+verifier.Sign(body))
	rec := httptest.NewRecorder()
	h.PaymentWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(func(context.Context) error { return nil }).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(func(context.Context) error { return assert.AnError }).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
