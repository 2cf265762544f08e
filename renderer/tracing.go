package renderer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "hvmi-renderer"

// InitTracing wires an OTLP/gRPC exporter into the global TracerProvider
// when endpoint is non-empty, following the codefang pipeline's
// otel.Tracer(name)-with-nil-fallback convention. endpoint is typically
// read from OTEL_EXPORTER_OTLP_ENDPOINT; an empty endpoint leaves the
// no-op global provider in place, so span creation elsewhere in this
// package stays a harmless no-op rather than an error path.
func InitTracing(ctx context.Context, endpoint string) (shutdown func(context.Context) error, err error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// tracer returns the hvmi-renderer tracer from the global provider.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// tracingMiddleware opens one span per renderer bridge request, tagged
// with the runner/coroutine route parameters once chi has matched them.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer().Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		if rctx := chi.RouteContext(ctx); rctx != nil {
			if runner := rctx.URLParam("runner"); runner != "" {
				span.SetAttributes(attribute.String("hvmi.runner", runner))
			}
			if cid := rctx.URLParam("cid"); cid != "" {
				span.SetAttributes(attribute.String("hvmi.cid", cid))
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
