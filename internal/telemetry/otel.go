package telemetry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/woneiros/travel-planner/internal/config"
)

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// langfuseTracesPath is appended to the Langfuse host
const langfuseTracesPath = "/api/public/otel/v1/traces"

// InitTracer installs a global OTLP/HTTP tracer provider. When telemetry is
// disabled or has no destination the global no-op provider stays in place.
func InitTracer(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		log.Info().Msg("Telemetry disabled")
		return noop, nil
	}

	opts, err := exporterOptions(cfg)
	if err != nil {
		if errors.Is(err, errNoDestination) {
			log.Warn().Msg("Telemetry enabled but no OTLP endpoint or Langfuse keys configured, tracing stays off")
			return noop, nil
		}
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("service", cfg.ServiceName).Msg("Telemetry initialized")
	return tp.Shutdown, nil
}

var errNoDestination = errors.New("no telemetry destination")

// exporterOptions prefers an explicit OTLP endpoint over Langfuse
func exporterOptions(cfg config.TelemetryConfig) ([]otlptracehttp.Option, error) {
	switch {
	case cfg.OTLPEndpoint != "":
		if strings.Contains(cfg.OTLPEndpoint, "://") {
			return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint)}, nil
		}
		return []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		}, nil
	case cfg.Langfuse.Configured():
		host := strings.TrimRight(cfg.Langfuse.Host, "/")
		if host == "" {
			return nil, fmt.Errorf("langfuse host is required")
		}
		return []otlptracehttp.Option{
			otlptracehttp.WithEndpointURL(host + langfuseTracesPath),
			otlptracehttp.WithHeaders(map[string]string{
				"Authorization": LangfuseAuthorization(cfg.Langfuse.PublicKey, cfg.Langfuse.SecretKey),
			}),
		}, nil
	default:
		return nil, errNoDestination
	}
}

// LangfuseAuthorization builds the basic auth header value for the Langfuse OTLP endpoint
func LangfuseAuthorization(publicKey, secretKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(publicKey+":"+secretKey))
}
