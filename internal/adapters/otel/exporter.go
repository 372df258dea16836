package otel

import (
	"context"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/stats"
)

const (
	serviceName    = "abtest"
	serviceVersion = "1.0.0"
)

// Exporter records experiment metrics through the OTel SDK. Depending on the
// config it pushes to an OTLP collector, serves a Prometheus endpoint, or both.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	registry     *prom.Registry
	runsTotal    metric.Int64Counter
	assignedHist metric.Int64Histogram
	pValueHist   metric.Float64Histogram
}

// NewExporter creates a new metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Active() {
		return nil, fmt.Errorf("metrics exporter is disabled or endpoint not configured")
	}

	var readers []sdkmetric.Option

	if cfg.Enabled && cfg.Endpoint != "" {
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	}

	var registry *prom.Registry
	if cfg.Prometheus {
		registry = prom.NewRegistry()
		reader, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(reader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(append(readers, sdkmetric.WithResource(res))...)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	runsTotal, err := meter.Int64Counter(
		"abtest_experiment_runs",
		metric.WithDescription("Number of simulated experiment runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	assignedHist, err := meter.Int64Histogram(
		"abtest_experiment_assigned_applicants",
		metric.WithDescription("Applicants assigned to a group per run"),
		metric.WithUnit("{applicant}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assigned histogram: %w", err)
	}

	pValueHist, err := meter.Float64Histogram(
		"abtest_chi_square_p_value",
		metric.WithDescription("Chi-square p-value of each run with enough data"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating p-value histogram: %w", err)
	}

	return &Exporter{
		provider:     provider,
		registry:     registry,
		runsTotal:    runsTotal,
		assignedHist: assignedHist,
		pValueHist:   pValueHist,
	}, nil
}

// ExportRun records the outcome of a completed experiment run.
func (e *Exporter) ExportRun(ctx context.Context, run *domain.ExperimentRun) error {
	attrs := []attribute.KeyValue{
		attribute.String("dataset", run.Dataset),
		attribute.Int("days", run.Days),
		attribute.Bool("tested", run.ChiSquare != nil),
	}
	if run.ChiSquare != nil {
		attrs = append(attrs, attribute.Bool("significant", run.ChiSquare.PValue < stats.DefaultAlpha))
	}
	opt := metric.WithAttributes(attrs...)

	e.runsTotal.Add(ctx, 1, opt)
	e.assignedHist.Record(ctx, run.AssignedCount, opt)
	if run.ChiSquare != nil {
		e.pValueHist.Record(ctx, run.ChiSquare.PValue, opt)
	}

	return nil
}

// Handler serves the Prometheus exposition, or nil when the pull reader is off.
func (e *Exporter) Handler() http.Handler {
	if e.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
