// Package handler adapts the resource services to HTTP. Every response uses
// the same JSON envelope.
package handler

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/query"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the body of every response.
type Envelope struct {
	Status           string            `json:"status"`
	Message          string            `json:"message,omitempty"`
	Results          *int              `json:"results,omitempty"`
	PaginationResult *query.Pagination `json:"paginationResult,omitempty"`
	Data             interface{}       `json:"data,omitempty"`
	Token            string            `json:"token,omitempty"`
	Errors           map[string]string `json:"errors,omitempty"`
	Error            string            `json:"error,omitempty"`
	Stack            string            `json:"stack,omitempty"`
}

// Responder writes envelopes. In development mode error responses also carry
// the underlying error and a stack trace.
type Responder struct {
	dev    bool
	logger *logger.Logger
}

func NewResponder(dev bool, log *logger.Logger) *Responder {
	return &Responder{dev: dev, logger: log.Named("http")}
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (rs *Responder) OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

func (rs *Responder) Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Status: StatusSuccess, Data: data})
}

func (rs *Responder) Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: msg})
}

func (rs *Responder) WithToken(w http.ResponseWriter, status int, data interface{}, token string) {
	JSON(w, status, Envelope{Status: StatusSuccess, Data: data, Token: token})
}

func (rs *Responder) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List writes a page with its count and pagination metadata.
func List[T any](w http.ResponseWriter, res *crud.ListResult[T]) {
	results := res.Results
	pagination := res.PaginationResult
	JSON(w, http.StatusOK, Envelope{
		Status:           StatusSuccess,
		Results:          &results,
		PaginationResult: &pagination,
		Data:             res.Data,
	})
}

// Error translates err into a status code and envelope. Unclassified errors
// become a generic 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		appErr = domain.Internal(err)
	}
	status := statusFor(appErr.Kind)

	log := rs.logger.With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("kind", string(appErr.Kind)), zap.String("message", appErr.Message))
	}

	env := Envelope{Status: StatusFail, Message: appErr.Message, Errors: appErr.Fields}
	if status >= http.StatusInternalServerError {
		env.Status = StatusError
	}
	if rs.dev {
		env.Error = err.Error()
		env.Stack = string(debug.Stack())
	}
	if appErr.Kind == domain.KindTooManyRequests {
		w.Header().Set("Retry-After", "1")
	}
	JSON(w, status, env)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NotFound answers requests for unknown routes.
func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Error(w, r, domain.NotFound("Can't find this route: "+r.URL.Path))
}
