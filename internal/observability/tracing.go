package observability

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/contact-graph-router/internal/logging"
	"github.com/signalsfoundry/contact-graph-router/model"
)

// tracerName identifies the engine's spans; every planning cycle traced
// by the live loop is rooted here.
const tracerName = "contact-graph-router/planning"

const defaultOTLPEndpoint = "localhost:4317"

// TracingConfig governs how planning-cycle tracing is initialised.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string // stdout | otlp
	Endpoint    string // used when Exporter == otlp
	SampleRatio float64
}

func (cfg TracingConfig) withDefaults() TracingConfig {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cgr-engine"
	}
	if cfg.Exporter == "" {
		cfg.Exporter = "stdout"
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		cfg.SampleRatio = 1.0
	}
	return cfg
}

// TracingConfigFromEnv pulls tracing configuration from CGR_TRACING_*
// environment variables, leaving defaults to withDefaults.
func TracingConfigFromEnv() TracingConfig {
	ratio := 1.0
	if raw := os.Getenv("CGR_TRACING_SAMPLE_RATIO"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed >= 0 && parsed <= 1 {
			ratio = parsed
		}
	}

	return TracingConfig{
		Enabled:     strings.EqualFold(os.Getenv("CGR_TRACING_ENABLED"), "true"),
		ServiceName: os.Getenv("CGR_TRACING_SERVICE_NAME"),
		Exporter:    strings.ToLower(os.Getenv("CGR_TRACING_EXPORTER")),
		Endpoint:    os.Getenv("CGR_OTLP_ENDPOINT"),
		SampleRatio: ratio,
	}
}

// InitTracing wires a tracer provider, exporter, propagators, and sampler
// based on the provided configuration. It returns a shutdown function to
// flush spans.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}
	cfg = cfg.withDefaults()

	if !cfg.Enabled {
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		log.Info(ctx, "tracing disabled; using noop tracer provider")
		return func(context.Context) error { return nil }, nil
	}

	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch cfg.Exporter {
	case "stdout":
		exp, err = stdouttrace.New(
			stdouttrace.WithWriter(os.Stdout),
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithoutTimestamps(),
		)
	case "otlp", "otlpgrpc":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
		exp, err = otlptrace.New(ctx, client)
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.namespace", "cgr"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	log.Info(ctx, "tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service_name", cfg.ServiceName),
		logging.String("sampler", fmt.Sprintf("parentbased_traceidratio_%0.2f", cfg.SampleRatio)),
	)

	return tp.Shutdown, nil
}

// StartCycleSpan opens the span covering one live re-planning cycle.
// Callers must End the returned span; RecordBestRoute and
// RecordAlternatives annotate it as the cycle's searches complete.
func StartCycleSpan(ctx context.Context, cycle int, simTime float64) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "cgr.plan_cycle",
		trace.WithAttributes(
			attribute.Int("cgr.cycle", cycle),
			attribute.Float64("cgr.sim_time", simTime),
		),
	)
}

// RecordBestRoute annotates a cycle span with the outcome of the best
// search: arrival time, latency, and hop count when a route exists, or
// an explicit not-found marker otherwise.
func RecordBestRoute(span trace.Span, r *model.Route, t0 float64) {
	if span == nil || r == nil {
		return
	}
	span.SetAttributes(attribute.Bool("cgr.route.found", r.Found))
	if !r.Found {
		return
	}
	span.SetAttributes(
		attribute.Float64("cgr.route.eta", r.ETA),
		attribute.Float64("cgr.route.latency", r.Latency(t0)),
		attribute.Int("cgr.route.hops", r.Hops),
	)
}

// RecordAlternatives annotates a cycle span with the size of the
// diversified route set.
func RecordAlternatives(span trace.Span, rs *model.RouteSet) {
	if span == nil || rs == nil {
		return
	}
	span.SetAttributes(attribute.Int("cgr.alternatives", len(rs.Routes)))
}

// ShutdownWithTimeout invokes the provided shutdown function with a
// bounded timeout, swallowing errors in the shutdown path.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.String("error", err.Error()))
	}
}
