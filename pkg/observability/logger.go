package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrMode    = "mode"
)

// TracingHandler is an [slog.Handler] that adds the trace_id and span_id of
// the active span to every record, plus the service name and mode. These
// stay at the top level even after WithGroup.
type TracingHandler struct {
	// root has the service attributes but no groups.
	root slog.Handler
	// inner is root with every WithAttrs/WithGroup call applied.
	inner slog.Handler
	// scopes replays the calls onto root once trace attributes are added.
	scopes []handlerScope
}

// handlerScope is one WithGroup (group set) or WithAttrs call.
type handlerScope struct {
	group string
	attrs []slog.Attr
}

// NewTracingHandler wraps inner. The service attributes are attached up front
// so they stay at the top level under WithGroup.
func NewTracingHandler(inner slog.Handler, service string, appMode AppMode) *TracingHandler {
	root := inner.WithAttrs([]slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	})

	return &TracingHandler{root: root, inner: root}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds trace context attributes from the span context, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	handler := th.inner

	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		handler = th.root.WithAttrs([]slog.Attr{
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		})

		for _, scope := range th.scopes {
			if scope.group != "" {
				handler = handler.WithGroup(scope.group)
			} else {
				handler = handler.WithAttrs(scope.attrs)
			}
		}
	}

	err := handler.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs returns a new TracingHandler with additional attributes on the inner handler.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return th
	}

	return th.with(handlerScope{attrs: attrs}, th.inner.WithAttrs(attrs))
}

// WithGroup returns a new TracingHandler with a group prefix on the inner handler.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return th
	}

	return th.with(handlerScope{group: name}, th.inner.WithGroup(name))
}

func (th *TracingHandler) with(scope handlerScope, inner slog.Handler) *TracingHandler {
	scopes := make([]handlerScope, 0, len(th.scopes)+1)
	scopes = append(scopes, th.scopes...)
	scopes = append(scopes, scope)

	return &TracingHandler{root: th.root, inner: inner, scopes: scopes}
}
