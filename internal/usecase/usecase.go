// Package usecase holds the resource services behind the HTTP handlers.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgForbidden = "You are not allowed to perform this action"

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

// FileUpload is an uploaded file after the handler read and sniffed it.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Effects emits best-effort domain events. Failures are logged, never returned.
type Effects struct {
	events    domain.EventPublisher
	observers []func(subject string)
	logger    *logger.Logger
}

// NewEffects publishes to events, which may be nil. Observers see every
// subject, whether or not a bus is configured.
func NewEffects(events domain.EventPublisher, log *logger.Logger, observers ...func(subject string)) Effects {
	return Effects{events: events, observers: observers, logger: log.Named("effects")}
}

func (e Effects) Publish(ctx context.Context, subject string, data interface{}) {
	for _, observe := range e.observers {
		observe(subject)
	}
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, subject, data); err != nil {
		e.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// parseID converts a hex id, reporting a NotFound for resource on failure.
func parseID(id, resource string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, domain.NotFound("No " + resource + " for this id " + id)
	}
	return oid, nil
}

func makeSlug(s string) string {
	return slug.Make(s)
}

// only returns the keys of payload listed in keys.
func only(payload map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			out[k] = v
		}
	}
	return out
}

// withField adds key=value to a copy of base.
func withField(base bson.M, key string, value interface{}) bson.M {
	out := make(bson.M, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[key] = value
	return out
}
