package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const defaultServiceName = "scorebug"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)
	otelInst, err := instrumentFactory(provider, cfg.ServiceName)
	if err != nil {
		return nil, nil, nil, err
	}

	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}
	return newRecorder(otelInst), promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

type otelInstruments struct {
	ctx              context.Context
	requests         metric.Int64Counter
	requestLatencyMs metric.Float64Histogram
	feedAttempts     metric.Int64Counter
	feedErrors       metric.Int64Counter
	feedLatencyMs    metric.Float64Histogram
	playsApplied     metric.Int64Counter
	playsSkipped     metric.Int64Counter
	renders          metric.Int64Counter
	renderErrors     metric.Int64Counter
	renderLatencyMs  metric.Float64Histogram
	encoderRestarts  metric.Int64Counter
	pollerCycles     metric.Int64Counter
	pollerErrors     metric.Int64Counter
	pollerLatencyMs  metric.Float64Histogram
}

// instrumentBuilder collects the first error so construction reads as a flat list.
type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name)
	b.err = err
	return c
}

func (b *instrumentBuilder) histogram(name string) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name)
	b.err = err
	return h
}

func newOtelInstruments(provider metric.MeterProvider, name string) (*otelInstruments, error) {
	b := &instrumentBuilder{meter: provider.Meter(name)}
	inst := &otelInstruments{
		ctx:              context.Background(),
		requests:         b.counter("http_requests_total"),
		requestLatencyMs: b.histogram("http_request_duration_ms"),
		feedAttempts:     b.counter("feed_attempts_total"),
		feedErrors:       b.counter("feed_errors_total"),
		feedLatencyMs:    b.histogram("feed_duration_ms"),
		playsApplied:     b.counter("plays_applied_total"),
		playsSkipped:     b.counter("plays_skipped_total"),
		renders:          b.counter("renders_total"),
		renderErrors:     b.counter("render_errors_total"),
		renderLatencyMs:  b.histogram("render_duration_ms"),
		encoderRestarts:  b.counter("encoder_restarts_total"),
		pollerCycles:     b.counter("poller_cycles_total"),
		pollerErrors:     b.counter("poller_errors_total"),
		pollerLatencyMs:  b.histogram("poller_cycle_duration_ms"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return inst, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordFeedAttempt(operation string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrOperation, operation)}
	o.recordCounter(o.feedAttempts, 1, attrs...)
	o.recordHistogram(o.feedLatencyMs, float64(duration.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.feedErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordPlayApplied(mode string) {
	if o == nil {
		return
	}
	o.recordCounter(o.playsApplied, 1, attribute.String(AttrMode, mode))
}

func (o *otelInstruments) recordPlaySkipped(reason string) {
	if o == nil {
		return
	}
	o.recordCounter(o.playsSkipped, 1, attribute.String(AttrReason, reason))
}

func (o *otelInstruments) recordRender(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.renders, 1)
	o.recordHistogram(o.renderLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.renderErrors, 1)
	}
}

func (o *otelInstruments) recordEncoderRestart() {
	if o == nil {
		return
	}
	o.recordCounter(o.encoderRestarts, 1)
}

func (o *otelInstruments) recordPoller(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.pollerCycles, 1)
	o.recordHistogram(o.pollerLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.pollerErrors, 1)
	}
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
