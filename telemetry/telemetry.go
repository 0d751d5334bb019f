package telemetry

import (
    "context"
    "errors"
    "go.opentelemetry.io/contrib/instrumentation/runtime"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
    "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
    "go.opentelemetry.io/otel/propagation"
    "go.opentelemetry.io/otel/sdk/metric"
    "go.opentelemetry.io/otel/sdk/resource"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
    semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
    "go.opentelemetry.io/otel/trace"
    "os"
    "time"
)

const systemName = "linkstack"

const metricInterval = 60 * time.Second

type IgnoreExporterErrorsHandler struct{}

func (IgnoreExporterErrorsHandler) Handle(err error) {}

// New installs global trace and meter providers exporting over OTLP/HTTP to collectorURL.
// With an empty collectorURL nothing is installed and the global no-op providers stay in place.
// The returned func flushes and stops both providers.
func New(service, version, collectorURL string) (func(), error) {
    if collectorURL == "" {
        return func() {}, nil
    }
    ctx := context.Background()

    res, err := resource.New(
        ctx,
        resource.WithHost(),
        resource.WithContainer(),
        resource.WithAttributes(semconv.ServiceNameKey.String(service), semconv.ServiceVersion(version)))
    if err != nil {
        return nil, err
    }

    tp, err := newTracerProvider(ctx, res, collectorURL)
    if err != nil {
        return nil, err
    }
    otel.SetTracerProvider(tp)
    otel.SetTextMapPropagator(propagation.TraceContext{})

    mp, err := newMeterProvider(ctx, res, collectorURL)
    if err != nil {
        _ = tp.Shutdown(ctx)
        return nil, err
    }
    otel.SetMeterProvider(mp)

    // The new runtime metrics do not have sufficient data on gc count or pause time, so we use the old metrics.
    os.Setenv("OTEL_GO_X_DEPRECATED_RUNTIME_METRICS", "true")
    if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(metricInterval)); err != nil {
        otel.Handle(err)
    }

    // swallow otel errors so they don't spam stdout
    otel.SetErrorHandler(IgnoreExporterErrorsHandler{})

    return func() {
        ctx := context.Background()
        _ = errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
    }, nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, collectorURL string) (*sdktrace.TracerProvider, error) {
    exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(collectorURL), otlptracehttp.WithInsecure())
    if err != nil {
        return nil, err
    }
    return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter), sdktrace.WithResource(res)), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, collectorURL string) (*metric.MeterProvider, error) {
    exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(collectorURL), otlpmetrichttp.WithInsecure())
    if err != nil {
        return nil, err
    }
    return metric.NewMeterProvider(
        metric.WithResource(res),
        metric.WithReader(metric.NewPeriodicReader(
            exporter,
            metric.WithProducer(runtime.NewProducer()),
            metric.WithInterval(metricInterval)))), nil
}

func SetAttributes(span trace.Span, kv ...attribute.KeyValue) {
    for _, attr := range kv {
        span.SetAttributes(attr)
    }
}

func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
    opts = append(opts, trace.WithAttributes(attribute.String("db.system.name", systemName)))
    return otel.GetTracerProvider().Tracer(systemName).Start(ctx, name, opts...)
}
