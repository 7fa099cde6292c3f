// Package metrics exposes Prometheus counters and latencies for chaincode
// transactions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hyperledger/fabric/common/flogging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = flogging.MustGetLogger("globalpatents.metrics")

// OutcomeOK labels a transaction that returned no error.
const OutcomeOK = "ok"

// Recorder counts transactions by function and outcome and observes their
// duration. A nil *Recorder is valid and records nothing.
type Recorder struct {
	transactions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewRecorder creates the transaction metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "globalpatents_transactions_total",
				Help: "Total number of chaincode transactions by function and outcome.",
			},
			[]string{"function", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "globalpatents_transaction_duration_seconds",
				Help:    "Chaincode transaction latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
	}
	for _, c := range []prometheus.Collector{r.transactions, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one finished transaction.
func (r *Recorder) Observe(function, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.transactions.WithLabelValues(function, outcome).Inc()
	r.duration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
