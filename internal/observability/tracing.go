package observability

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Garsondee/realmforge/internal/logging"
)

// TracerName is the instrumentation scope used by simulation spans.
const TracerName = "github.com/Garsondee/realmforge/sim"

// TracingConfig governs how headless tracing is initialised.
type TracingConfig struct {
	Enabled bool
	Output  io.Writer // stdout exporter destination; nil means os.Stdout
	Pretty  bool
}

// InitTracing installs a global tracer provider. When tracing is disabled a
// noop provider is installed. The returned function flushes pending spans.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		log.Debug(ctx, "tracing disabled; using noop tracer provider")
		return func(context.Context) error { return nil }, nil
	}

	var opts []stdouttrace.Option
	if cfg.Output != nil {
		opts = append(opts, stdouttrace.WithWriter(cfg.Output))
	}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	log.Info(ctx, "tracing enabled", logging.String("exporter", "stdout"))

	return tp.Shutdown, nil
}

// Tracer returns the simulation tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
