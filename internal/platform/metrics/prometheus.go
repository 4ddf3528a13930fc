package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus metrics.
type MetricsManager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	EventsPublished     *prometheus.CounterVec
	CompaniesCreated    prometheus.Counter
	ReviewsCreated      prometheus.Counter
	CouponsRedeemed     prometheus.Counter
	JobRuns             *prometheus.CounterVec
}

// NewMetricsManager registers the service metrics on a fresh registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	namespace := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published to NATS by subject and outcome.",
		}, []string{"subject", "outcome"}),
		CompaniesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "companies_created_total",
			Help:      "Total number of companies created.",
		}),
		ReviewsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_created_total",
			Help:      "Total number of reviews created.",
		}),
		CouponsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupons_redeemed_total",
			Help:      "Total number of coupon redemptions.",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Maintenance job runs by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventsPublished,
		m.CompaniesCreated,
		m.ReviewsCreated,
		m.CouponsRedeemed,
		m.JobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveEvent counts domain events by subject. It is used as a publish hook.
func (m *MetricsManager) ObserveEvent(subject string) {
	switch subject {
	case "adwall.company.created":
		m.CompaniesCreated.Inc()
	case "adwall.review.created":
		m.ReviewsCreated.Inc()
	case "adwall.coupon.redeemed":
		m.CouponsRedeemed.Inc()
	}
}

// ObserveJobRun counts a maintenance run by outcome.
func (m *MetricsManager) ObserveJobRun(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.JobRuns.WithLabelValues(outcome).Inc()
}

// StartMetricsServer serves /metrics on port until ctx is done.
func StartMetricsServer(ctx context.Context, port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}()

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
