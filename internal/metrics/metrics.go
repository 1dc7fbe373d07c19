// Package metrics provides Prometheus metrics for the product variant service
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	registry *prometheus.Registry

	// Shopify Admin API metrics
	ShopifyRequestsTotal   *prometheus.CounterVec
	ShopifyRequestDuration *prometheus.HistogramVec

	// Business metrics
	SaveOutcomesTotal  *prometheus.CounterVec
	WebhookEventsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.ShopifyRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopify_requests_total",
			Help: "Total number of Shopify Admin API requests",
		},
		[]string{"operation", "status"},
	)

	m.ShopifyRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopify_request_duration_seconds",
			Help:    "Duration of Shopify Admin API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	m.SaveOutcomesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_save_outcomes_total",
			Help: "Variant save requests by outcome",
		},
		[]string{"outcome"},
	)

	m.WebhookEventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Shopify product webhooks by result",
		},
		[]string{"result"},
	)

	reg.MustRegister(prometheus.NewGoCollector())

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveShopifyRequest records one Admin API call. Safe on a nil receiver.
func (m *Metrics) ObserveShopifyRequest(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ShopifyRequestsTotal.WithLabelValues(operation, status).Inc()
	m.ShopifyRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSaveOutcome counts a finished save. Safe on a nil receiver.
func (m *Metrics) RecordSaveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.SaveOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordWebhookEvent counts a processed webhook. Safe on a nil receiver.
func (m *Metrics) RecordWebhookEvent(result string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(result).Inc()
}
