package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry *prometheus.Registry

	incidentsSubmitted *prometheus.CounterVec
	campaignsCreated   prometheus.Counter
	campaignReads      prometheus.Counter
	budgetDenied       prometheus.Counter
	authFailures       prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		incidentsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinelnet_incidents_submitted_total",
				Help: "Incident submissions, partitioned by outcome",
			},
			[]string{"result"},
		),

		campaignsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinelnet_campaigns_created_total",
				Help: "Campaigns implicitly created by uncorrelated incidents",
			},
		),

		campaignReads: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinelnet_campaign_reads_total",
				Help: "Budget-gated campaign read operations served",
			},
		),

		budgetDenied: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinelnet_budget_denied_total",
				Help: "Reads rejected because the query budget was exhausted",
			},
		),

		authFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinelnet_auth_failures_total",
				Help: "Requests rejected with an invalid or missing API key",
			},
		),
	}
}

func (c *Collector) RecordSubmission(isNew bool) {
	result := "updated"
	if isNew {
		result = "created"
	}
	c.incidentsSubmitted.WithLabelValues(result).Inc()
}

func (c *Collector) RecordCampaignCreated() {
	c.campaignsCreated.Inc()
}

func (c *Collector) RecordCampaignRead() {
	c.campaignReads.Inc()
}

func (c *Collector) RecordBudgetDenied() {
	c.budgetDenied.Inc()
}

func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

// Handler exposes the collector's registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
