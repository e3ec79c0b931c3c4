package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is an Observer that counts checkouts for Prometheus.
type Metrics struct {
	Checkouts     *prometheus.CounterVec
	SkippedLines  *prometheus.CounterVec
	SettledAmount prometheus.Counter
	UnitsSold     prometheus.Counter
	PackageWeight prometheus.Histogram
}

// NewMetrics registers the checkout metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "till_checkouts_total",
			Help: "Checkout calls by policy and outcome",
		}, []string{"policy", "outcome"}),
		SkippedLines: f.NewCounterVec(prometheus.CounterOpts{
			Name: "till_skipped_lines_total",
			Help: "Basket lines left out by the skip policy, by reason",
		}, []string{"reason"}),
		SettledAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "till_settled_amount_total",
			Help: "Sum of settled checkout totals, shipping included",
		}),
		UnitsSold: f.NewCounter(prometheus.CounterOpts{
			Name: "till_units_sold_total",
			Help: "Units taken out of stock by settled checkouts",
		}),
		PackageWeight: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "till_package_weight_kg",
			Help:    "Total package weight of settled checkouts that ship",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}

func (m *Metrics) CheckoutFinished(r *Result) {
	m.Checkouts.WithLabelValues(r.Policy.String(), r.Outcome.String()).Inc()
	for _, s := range r.Skipped {
		m.SkippedLines.WithLabelValues(s.Reason.String()).Inc()
	}
	if !r.Settled() {
		return
	}
	total, _ := r.Total.Float64()
	m.SettledAmount.Add(total)
	m.UnitsSold.Add(float64(r.Units()))
	if !r.Shipment.Empty() {
		m.PackageWeight.Observe(r.Shipment.TotalWeight)
	}
}
