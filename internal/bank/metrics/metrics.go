package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain-level Prometheus metrics.
type Metrics struct {
	DonationsTotal prometheus.Counter
	RequestsTotal  *prometheus.CounterVec
	InventoryML    *prometheus.GaugeVec
}

func New() *Metrics {
	return &Metrics{
		DonationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_donations_total",
			Help: "Total number of accepted donations",
		}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_requests_total",
			Help: "Total number of submitted blood requests by resulting status",
		}, []string{"status"}),
		InventoryML: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bloodbank_inventory_millilitres",
			Help: "Non-expired inventory volume by blood type",
		}, []string{"blood_type"}),
	}
}

func (m *Metrics) IncrementDonations() {
	m.DonationsTotal.Inc()
}

func (m *Metrics) IncrementRequests(status string) {
	m.RequestsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddInventory(bloodType string, ml int) {
	m.InventoryML.WithLabelValues(bloodType).Add(float64(ml))
}

func (m *Metrics) SubInventory(bloodType string, ml int) {
	m.InventoryML.WithLabelValues(bloodType).Sub(float64(ml))
}

// SetInventory seeds the gauge from store state at startup.
func (m *Metrics) SetInventory(bloodType string, ml int) {
	m.InventoryML.WithLabelValues(bloodType).Set(float64(ml))
}
