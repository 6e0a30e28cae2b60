package bridge

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/urlsync-dev/urlsync/pkg/protocol"
)

// tracerName is the instrumentation scope for bridge spans.
const tracerName = "github.com/urlsync-dev/urlsync/pkg/bridge"

// startEventSpan opens a span for one inbound location event. Without a
// configured tracer provider this is a no-op span, so event handling pays
// nothing in the default setup.
func startEventSpan(ev *protocol.Event) trace.Span {
	tracer := otel.Tracer(tracerName)
	_, span := tracer.Start(context.Background(), "urlsync.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("urlsync.event.type", ev.Type.String()),
			attribute.String("urlsync.event.path", ev.Path),
			attribute.Int64("urlsync.event.seq", int64(ev.Seq)),
		),
	)
	return span
}
