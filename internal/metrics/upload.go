package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScanMetrics records upload scan outcomes. It satisfies the scan observer
// contract of the verifier chain.
type ScanMetrics struct {
	scanCounter metric.Int64Counter
	scanHisto   metric.Float64Histogram
}

// NewScanMetrics creates scan instruments on top of the provided meter provider.
func NewScanMetrics(meterProvider metric.MeterProvider, namespace string) (*ScanMetrics, error) {
	meter := meterProvider.Meter(namespace)

	scanCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_upload_scans_total", namespace),
		metric.WithDescription("Total number of upload content scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan counter: %w", err)
	}

	scanHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_upload_scan_duration_seconds", namespace),
		metric.WithDescription("Duration of upload content scans in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan duration histogram: %w", err)
	}

	return &ScanMetrics{
		scanCounter: scanCounter,
		scanHisto:   scanHisto,
	}, nil
}

// ObserveScan records one scan with its duration and outcome.
func (s *ScanMetrics) ObserveScan(ctx context.Context, duration time.Duration, infected bool) {
	attrs := []attribute.KeyValue{
		attribute.String("infected", strconv.FormatBool(infected)),
	}

	s.scanCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	s.scanHisto.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
