// Package metrics exposes dispatch counters to prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jask/statebox/internal/store"
)

// Collector counts dispatched actions.
type Collector struct {
	dispatched *prometheus.CounterVec
	unhandled  prometheus.Counter
	handles    func(store.Action) bool
}

// New registers the collector's metrics with reg. handles decides which
// actions count as unhandled; nil treats every action as handled.
func New(reg prometheus.Registerer, handles func(store.Action) bool) (*Collector, error) {
	c := &Collector{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statebox",
			Name:      "actions_dispatched_total",
			Help:      "Actions dispatched to the store.",
		}, []string{"slice", "type"}),
		unhandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statebox",
			Name:      "actions_unhandled_total",
			Help:      "Dispatched actions no slice declares.",
		}),
		handles: handles,
	}
	for _, col := range []prometheus.Collector{c.dispatched, c.unhandled} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Count records one dispatch of a.
func (c *Collector) Count(a store.Action) {
	c.dispatched.WithLabelValues(a.Slice, a.Type).Inc()
	if c.handles != nil && !c.handles(a) {
		c.unhandled.Inc()
	}
}

// Observer adapts c to a store observer.
func Observer[R any](c *Collector) store.Observer[R] {
	return store.ObserverFunc[R](func(a store.Action, _, _ R) { c.Count(a) })
}

// Handler serves /metrics from g and a /healthz probe.
func Handler(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Serve runs the metrics endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
