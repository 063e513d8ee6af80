// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes used as the "outcome" label of ImportRequestsTotal.
const (
	OutcomeSuccess    = "success"
	OutcomeQuota      = "quota_rejected"
	OutcomeNoContacts = "no_valid_contacts"
	OutcomeBadFormat  = "unsupported_format"
	OutcomeInProgress = "in_progress"
	OutcomeError      = "error"
)

var (
	// ImportRequestsTotal counts contact import requests by outcome.
	ImportRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sunrise",
		Subsystem: "import",
		Name:      "requests_total",
		Help:      "Total contact import requests by outcome.",
	}, []string{"outcome"})

	// ImportContactsTotal counts parsed contacts by what happened to them.
	ImportContactsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sunrise",
		Subsystem: "import",
		Name:      "contacts_total",
		Help:      "Contacts seen by the import pipeline (inserted/duplicate/invalid).",
	}, []string{"result"})

	ImportFailedChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sunrise",
		Subsystem: "import",
		Name:      "failed_chunks_total",
		Help:      "Insert chunks that failed and were skipped.",
	})

	// ImportDuration tracks end-to-end import latency.
	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sunrise",
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Contact import duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
