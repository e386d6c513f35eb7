// Tracing instrumentation for the live connection.
package live

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/avalonarena/spectate/internal/telemetry"
)

// startConnSpan starts a span covering one connection session, from a
// successful dial to the read loop exiting.
func (c *Client) startConnSpan(ctx context.Context, attempt int) (context.Context, trace.Span) {
	ctx, span := telemetry.Tracer().Start(ctx, "live.connection")
	span.SetAttributes(
		attribute.String("ws.url", c.url),
		attribute.Int("ws.attempt", attempt),
	)
	return ctx, span
}

// endConnSpan ends the session span with the disconnect cause.
func (c *Client) endConnSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// startCommandSpan starts a span for one outbound command.
func (c *Client) startCommandSpan(ctx context.Context, cmd string) (context.Context, trace.Span) {
	ctx, span := telemetry.Tracer().Start(ctx, "live.command."+cmd)
	span.SetAttributes(attribute.String("command.name", cmd))
	return ctx, span
}

// endCommandSpan ends the command span.
func (c *Client) endCommandSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
