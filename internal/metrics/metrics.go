// Package metrics exports scoring and cache events as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

const (
	defaultNamespace = "pagescore"
	shutdownTimeout  = 5 * time.Second
)

// Recorder implements contract.MetricsRecorder on its own registry.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	scoreLatency   *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheStores    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
}

var _ contract.MetricsRecorder = &Recorder{} // Compile-time check

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the buckets of the scoring latency histogram, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// WithRegistry sets the registry the metrics are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(r *Recorder) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// NewRecorder creates a recorder. Without WithRegistry it uses a fresh registry.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: defaultNamespace,
		buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)
	r.scoreLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "engine",
		Name:      "score_duration_seconds",
		Help:      "Time spent scoring one page, by resulting grade",
		Buckets:   r.buckets,
	}, []string{"grade"})
	r.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache fetches that returned a fresh entry",
	}, []string{"kind"})
	r.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache fetches that returned nothing",
	}, []string{"kind"})
	r.cacheStores = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "cache",
		Name:      "stores_total",
		Help:      "Cache writes by outcome",
	}, []string{"kind", "result"})
	r.cacheEvictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Cache entries deleted, by reason",
	}, []string{"reason"})
	return r
}

// Registry returns the registry holding the metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveScore implements contract.MetricsRecorder.
func (r *Recorder) ObserveScore(elapsed time.Duration, grade schema.Grade) {
	r.scoreLatency.WithLabelValues(string(grade)).Observe(elapsed.Seconds())
}

// CacheHit implements contract.MetricsRecorder.
func (r *Recorder) CacheHit(kind schema.AnalysisKind) {
	r.cacheHits.WithLabelValues(string(kind)).Inc()
}

// CacheMiss implements contract.MetricsRecorder.
func (r *Recorder) CacheMiss(kind schema.AnalysisKind) {
	r.cacheMisses.WithLabelValues(string(kind)).Inc()
}

// CacheStore implements contract.MetricsRecorder.
func (r *Recorder) CacheStore(kind schema.AnalysisKind, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.cacheStores.WithLabelValues(string(kind), result).Inc()
}

// CacheEviction implements contract.MetricsRecorder.
func (r *Recorder) CacheEviction(reason string, n int) {
	if n <= 0 {
		return
	}
	r.cacheEvictions.WithLabelValues(reason).Add(float64(n))
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
