package servus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servus_client",
			Name:      "records_received_total",
			Help:      "Domain records projected from subscription streams.",
		},
		[]string{"type"},
	)

	malformedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "servus_client",
			Name:      "malformed_records_total",
			Help:      "Wire events skipped because projection failed.",
		},
	)

	subscriptionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "servus_client",
			Name:      "subscriptions_total",
			Help:      "Relay subscriptions opened.",
		},
	)

	publishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servus_client",
			Name:      "publish_total",
			Help:      "Events published to relays, by outcome.",
		},
		[]string{"outcome"},
	)

	blobTransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servus_client",
			Name:      "blob_transfers_total",
			Help:      "Blob store transfers, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

func publishOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case IsRecoverable(err):
		return outcomeError
	default:
		return outcomeRejected
	}
}
