package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MarketplaceMetrics records the business-level counters for the order,
// group order, and rating flows.
type MarketplaceMetrics struct {
	orderDuration     *prometheus.HistogramVec
	ordersCreated     *prometheus.CounterVec
	orderTransitions  *prometheus.CounterVec
	groupOrderJoins   prometheus.Counter
	groupOrdersClosed *prometheus.CounterVec
	ratingsSubmitted  *prometheus.HistogramVec
}

// NewMarketplaceMetrics registers the marketplace metrics on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	orderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_create_duration_seconds",
		Help:    "Duration of order creation including inventory reservation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"order_type"})
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labelled by order type.",
	}, []string{"order_type"})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions, labelled by source and target status.",
	}, []string{"from", "to"})
	groupOrderJoins := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_order_joins_total",
		Help: "Vendors joining group orders.",
	})
	groupOrdersClosed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_orders_closed_total",
		Help: "Group orders leaving the open state, labelled by reason.",
	}, []string{"reason"})
	ratingsSubmitted := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ratings_submitted",
		Help:    "Submitted supplier ratings by star value.",
		Buckets: []float64{1, 2, 3, 4, 5},
	}, []string{"role"})
	reg.MustRegister(orderDuration, ordersCreated, orderTransitions, groupOrderJoins, groupOrdersClosed, ratingsSubmitted)
	return &MarketplaceMetrics{
		orderDuration:     orderDuration,
		ordersCreated:     ordersCreated,
		orderTransitions:  orderTransitions,
		groupOrderJoins:   groupOrderJoins,
		groupOrdersClosed: groupOrdersClosed,
		ratingsSubmitted:  ratingsSubmitted,
	}
}

// ObserveOrderCreate records how long an order creation took.
func (m *MarketplaceMetrics) ObserveOrderCreate(orderType string, duration time.Duration) {
	if m == nil || m.orderDuration == nil {
		return
	}
	m.orderDuration.WithLabelValues(normalizeLabel(orderType)).Observe(duration.Seconds())
}

// IncOrderCreated increments the created counter for the order type.
func (m *MarketplaceMetrics) IncOrderCreated(orderType string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(orderType)).Inc()
}

// IncOrderTransition increments the transition counter for the given edge.
func (m *MarketplaceMetrics) IncOrderTransition(from, to string) {
	if m == nil || m.orderTransitions == nil {
		return
	}
	m.orderTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncGroupOrderJoin counts one successful group order join.
func (m *MarketplaceMetrics) IncGroupOrderJoin() {
	if m == nil || m.groupOrderJoins == nil {
		return
	}
	m.groupOrderJoins.Inc()
}

// IncGroupOrderClosed counts a group order leaving the open state.
// Reason is "target_reached" or "deadline_expired".
func (m *MarketplaceMetrics) IncGroupOrderClosed(reason string) {
	if m == nil || m.groupOrdersClosed == nil {
		return
	}
	m.groupOrdersClosed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveRating records a submitted star rating.
func (m *MarketplaceMetrics) ObserveRating(role string, stars int) {
	if m == nil || m.ratingsSubmitted == nil {
		return
	}
	m.ratingsSubmitted.WithLabelValues(normalizeLabel(role)).Observe(float64(stars))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
