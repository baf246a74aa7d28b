package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Business Metrics
var (
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePurchasesTotal,
			Help: HelpTextPurchasesTotal,
		},
		[]string{LabelItem},
	)

	PurchaseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePurchaseFailures,
			Help: HelpTextPurchaseFailures,
		},
		[]string{LabelReason},
	)

	CreditsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCreditsSpent,
			Help: HelpTextCreditsSpent,
		},
	)

	CreditsRefunded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCreditsRefunded,
			Help: HelpTextCreditsRefunded,
		},
	)

	CasesOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCasesOpened,
			Help: HelpTextCasesOpened,
		},
		[]string{LabelItem},
	)

	CaseDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCaseDuplicates,
			Help: HelpTextCaseDuplicates,
		},
	)

	ItemsEquipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsEquipped,
			Help: HelpTextItemsEquipped,
		},
		[]string{LabelCategory},
	)

	RoleSideEffects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRoleSideEffects,
			Help: HelpTextRoleSideEffects,
		},
		[]string{LabelKind, LabelOutcome},
	)

	OutboxPendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameOutboxPendingEntries,
			Help: HelpTextOutboxPendingEntries,
		},
	)
)
