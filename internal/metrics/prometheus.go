package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nifty_bot"

// Recorder publishes cycle, signal, order and PnL metrics. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	cycles       *prometheus.CounterVec
	signals      *prometheus.CounterVec
	orders       *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	underlying   prometheus.Gauge
	pcr          prometheus.Gauge
	pnl          *prometheus.GaugeVec
	positions    prometheus.Gauge
	modelTrained prometheus.Gauge
}

// New registers the recorder's collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Strategy cycles by outcome status",
		}, []string{"status"}),
		signals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Signals produced per source (ml, pcr, trend, final)",
		}, []string{"source", "signal"}),
		orders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders submitted by side and venue status",
		}, []string{"side", "status"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors encountered by kind",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of collaborator calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		underlying: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "underlying_ltp",
			Help:      "Last underlying price seen by the strategy",
		}),
		pcr: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "put_call_ratio",
			Help:      "Put/call open-interest ratio of the last chain",
		}),
		pnl: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pnl_rupees",
			Help:      "Ledger figures: realized, unrealized, total, daily, capital",
		}, []string{"kind"}),
		positions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_positions",
			Help:      "Open option positions",
		}),
		modelTrained: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_trained",
			Help:      "1 once the direction model is trained",
		}),
	}
}

func (r *Recorder) RecordCycle(status string) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordSignal(source, signal string) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(source, signal).Inc()
}

func (r *Recorder) RecordOrder(side, status string) {
	if r == nil {
		return
	}
	r.orders.WithLabelValues(side, status).Inc()
}

func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordMarket(underlying, pcr float64) {
	if r == nil {
		return
	}
	r.underlying.Set(underlying)
	r.pcr.Set(pcr)
}

// RecordLedger publishes the ledger figures after a cycle.
func (r *Recorder) RecordLedger(realized, unrealized, total, daily, capital float64, open int) {
	if r == nil {
		return
	}
	r.pnl.WithLabelValues("realized").Set(realized)
	r.pnl.WithLabelValues("unrealized").Set(unrealized)
	r.pnl.WithLabelValues("total").Set(total)
	r.pnl.WithLabelValues("daily").Set(daily)
	r.pnl.WithLabelValues("capital").Set(capital)
	r.positions.Set(float64(open))
}

func (r *Recorder) RecordModelTrained(trained bool) {
	if r == nil {
		return
	}
	if trained {
		r.modelTrained.Set(1)
	} else {
		r.modelTrained.Set(0)
	}
}
