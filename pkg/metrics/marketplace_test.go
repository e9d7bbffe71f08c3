package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMarketplaceMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMarketplaceMetrics(reg)

	metrics.ObserveOrderCreate("individual", 120*time.Millisecond)
	metrics.IncOrderCreated("individual")
	metrics.IncOrderTransition("pending", "confirmed")
	metrics.IncGroupOrderJoin()
	metrics.IncGroupOrderClosed("target_reached")
	metrics.ObserveRating("vendor", 4)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "orders_created_total", "order_type", "individual"); err != nil {
		t.Fatalf("fetch orders created: %v", err)
	} else if got != 1 {
		t.Fatalf("expected orders_created_total=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_status_transitions_total", "to", "confirmed"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "group_orders_closed_total", "reason", "target_reached"); err != nil {
		t.Fatalf("fetch closed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected group_orders_closed_total=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_create_duration_seconds", "order_type", "individual"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "ratings_submitted", "role", "vendor"); err != nil {
		t.Fatalf("fetch ratings: %v", err)
	} else if got != 4 {
		t.Fatalf("expected ratings sum 4, got %f", got)
	}
}

func TestMarketplaceMetricsNilSafe(t *testing.T) {
	var metrics *MarketplaceMetrics
	metrics.IncOrderCreated("individual")
	metrics.IncGroupOrderJoin()

	empty := NewMarketplaceMetrics(nil)
	empty.IncOrderTransition("pending", "confirmed")
	empty.ObserveRating("vendor", 5)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
