// Package metrics records migration progress as Prometheus metrics. A
// Collector is passed to the engine as an observer and can be exposed over
// HTTP while a run is in progress.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BartekS5/mysql2sqlite/pkg/logger"
)

// Collector owns its own registry so several runs (or tests) never clash
// over the global one.
type Collector struct {
	registry *prometheus.Registry

	tableRows    *prometheus.GaugeVec
	tablePages   *prometheus.GaugeVec
	pagesFetched *prometheus.CounterVec
	rowsWritten  *prometheus.CounterVec
	pageFailures *prometheus.CounterVec
	writeWait    prometheus.Histogram
}

// NewCollector creates a collector with every metric registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mysql2sqlite",
			Name:      "table_rows",
			Help:      "Rows counted in the source for a table.",
		}, []string{"table"}),
		tablePages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mysql2sqlite",
			Name:      "table_pages",
			Help:      "Fetch units scheduled for a table.",
		}, []string{"table"}),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2sqlite",
			Name:      "pages_fetched_total",
			Help:      "Pages read from the source.",
		}, []string{"table"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2sqlite",
			Name:      "rows_written_total",
			Help:      "Rows committed to the target store.",
		}, []string{"table"}),
		pageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2sqlite",
			Name:      "page_failures_total",
			Help:      "Pages that failed to fetch or write.",
		}, []string{"table"}),
		writeWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mysql2sqlite",
			Name:      "write_lock_wait_seconds",
			Help:      "Time a page waited for the target write lock.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	c.registry.MustRegister(c.tableRows, c.tablePages, c.pagesFetched, c.rowsWritten, c.pageFailures, c.writeWait)
	return c
}

func (c *Collector) TablePlanned(table string, rows, pages int) {
	c.tableRows.WithLabelValues(table).Set(float64(rows))
	c.tablePages.WithLabelValues(table).Set(float64(pages))
}

func (c *Collector) PageFetched(table string, _ int, _ int) {
	c.pagesFetched.WithLabelValues(table).Inc()
}

func (c *Collector) PageWritten(table string, _ int, rows int, wait time.Duration) {
	c.rowsWritten.WithLabelValues(table).Add(float64(rows))
	c.writeWait.Observe(wait.Seconds())
}

func (c *Collector) PageFailed(table string, _ int, _ error) {
	c.pageFailures.WithLabelValues(table).Inc()
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	logger.Infof("metrics listening on %s", addr)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := srv.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve metrics: %w", err)
	}
}
