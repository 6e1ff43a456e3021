package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "feescope"

var (
	QueryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "subgraph",
		Name:      "queries_total",
		Help:      "Subgraph queries by operation and status.",
	}, []string{"operation", "status"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "subgraph",
		Name:      "query_duration_seconds",
		Help:      "Subgraph query latency in seconds, retries included.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "paginate",
		Name:      "pages_total",
		Help:      "Pages fetched per entity.",
	}, []string{"entity"})

	ItemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "paginate",
		Name:      "items_total",
		Help:      "Items fetched per entity.",
	}, []string{"entity"})

	DaysComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stats",
		Name:      "days_total",
		Help:      "Daily computations by chain and status.",
	}, []string{"chain", "status"})

	LastComputedDay = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stats",
		Name:      "last_computed_day",
		Help:      "Start of the last successfully computed day (unix seconds).",
	}, []string{"chain"})
)

// PageObserver returns a page hook counting pages and items for entity.
func PageObserver(entity string) func(page, items int) {
	pages := PagesFetched.WithLabelValues(entity)
	total := ItemsFetched.WithLabelValues(entity)
	return func(_ int, items int) {
		pages.Inc()
		total.Add(float64(items))
	}
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}
