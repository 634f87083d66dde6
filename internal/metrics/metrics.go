package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_events_created_total",
		Help: "Total number of unified events created.",
	})

	EventsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_events_deleted_total",
		Help: "Total number of unified events deleted.",
	})

	EventQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_event_queries_total",
		Help: "Total number of filtered event queries served.",
	})

	RiskAssessments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_risk_assessments_total",
		Help: "Total number of per-event risk assessments computed.",
	})

	FlowTraces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_flow_traces_total",
		Help: "Total number of fund flow traces computed.",
	})

	FlowTraceLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compliance_flow_trace_length",
		Help:    "Number of events in a completed fund flow trace.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50, 100, 500},
	})

	AuditPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_audit_publish_failures_total",
		Help: "Total number of audit events that failed to publish.",
	})
)
