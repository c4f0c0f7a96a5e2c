package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish and consume outcomes used as metric label values.
const (
	outcomeConfirmed = "confirmed"
	outcomeFailed    = "failed"
	outcomeProcessed = "processed"
	outcomeMalformed = "malformed"
	outcomeDiscarded = "discarded"
)

var (
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_publish_total",
		Help: "Events published to the broker, by queue and outcome.",
	}, []string{"queue", "outcome"})

	consumeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_consume_total",
		Help: "Deliveries handled by consumers, by queue and outcome.",
	}, []string{"queue", "outcome"})

	consumerRestarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_consumer_restarts_total",
		Help: "Consumer reconnect cycles triggered by connection failures.",
	}, []string{"queue"})
)
