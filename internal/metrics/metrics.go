// Package metrics holds the Prometheus collectors shared by the catalog clients
// and the chat front ends.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookbot_catalog_requests_total",
		Help: "Outbound catalog requests by source, operation and outcome",
	}, []string{"source", "operation", "outcome"})

	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookbot_catalog_request_duration_seconds",
		Help:    "Duration of outbound catalog requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "operation"})

	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookbot_commands_total",
		Help: "Chat commands handled, by command and result",
	}, []string{"command", "result"})
)

// ObserveCatalogRequest records one outbound request.
func ObserveCatalogRequest(source, operation, outcome string, took time.Duration) {
	CatalogRequestsTotal.WithLabelValues(source, operation, outcome).Inc()
	CatalogRequestDuration.WithLabelValues(source, operation).Observe(took.Seconds())
}

// ObserveCommand records one handled chat command.
func ObserveCommand(command, result string) {
	CommandsTotal.WithLabelValues(command, result).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
