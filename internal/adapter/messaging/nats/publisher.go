package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("adwall-service/nats-publisher")

// Publisher emits JSON-encoded domain events with trace context in the headers.
type Publisher struct {
	conn      *nats.Conn
	logger    *logger.Logger
	published *prometheus.CounterVec
}

// NewPublisher connects to url. published, when not nil, counts messages by
// subject and outcome.
func NewPublisher(url, appName string, published *prometheus.CounterVec, log *logger.Logger) (*Publisher, error) {
	log = log.Named("NATSPublisher")
	log.Info("Connecting to NATS", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{conn: conn, logger: log, published: published}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "nats.publish "+subject)
	defer span.End()
	span.SetAttributes(attribute.String("messaging.system", "nats"), attribute.String("messaging.destination", subject))

	payload, err := json.Marshal(data)
	if err != nil {
		span.RecordError(err)
		p.count(subject, "error")
		return fmt.Errorf("failed to marshal event for %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = payload
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		p.count(subject, "error")
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.count(subject, "ok")
	p.logger.Debug("Event published", zap.String("subject", subject), zap.Int("bytes", len(payload)))
	return nil
}

func (p *Publisher) count(subject, outcome string) {
	if p.published != nil {
		p.published.WithLabelValues(subject, outcome).Inc()
	}
}

// Healthy reports whether the connection is usable.
func (p *Publisher) Healthy() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Error("Failed to drain NATS connection", zap.Error(err))
		p.conn.Close()
	}
}

// HeaderCarrier adapts nats.Header to the OpenTelemetry TextMapCarrier.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
