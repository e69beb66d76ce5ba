// Package metrics exports Prometheus gauges and counters for the entry
// store and subscription engine, scraped by cmd/databroker's /metrics
// endpoint.
//
// Grounded on the promauto.NewGaugeVec/NewCounterVec registration style
// used for the cdc-sink staging package's metrics, adapted from
// per-table label vectors to the broker's store/subscription
// dimensions (registrations, updates, live subscriber counts).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesRegistered counts every accepted Register call, including
	// idempotent no-op re-registrations.
	EntriesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "databroker_entries_registered_total",
		Help: "Total number of Register calls accepted by the entry store.",
	})

	// UpdateBatches counts update batches by outcome ("applied" or
	// "rejected").
	UpdateBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "databroker_update_batches_total",
		Help: "Total number of update batches processed by the entry store, by outcome.",
	}, []string{"outcome"})

	// ChangedEntries counts how many entries were reported changed across
	// all applied batches.
	ChangedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "databroker_changed_entries_total",
		Help: "Total number of entries reported changed by applied update batches.",
	})

	// FieldSubscribers and QuerySubscribers report the live subscriber
	// count for each subscription flavour.
	FieldSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "databroker_field_subscribers",
		Help: "Number of currently registered field subscriptions.",
	})
	QuerySubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "databroker_query_subscribers",
		Help: "Number of currently registered query subscriptions.",
	})

	// SubscriberSendsDropped counts emissions skipped because a
	// subscriber's queue was full or closed.
	SubscriberSendsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "databroker_subscriber_sends_dropped_total",
		Help: "Total number of dispatch emissions dropped due to a full or closed subscriber queue.",
	})
)
