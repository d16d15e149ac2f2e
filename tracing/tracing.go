// Package tracing wraps APDU dispatch in OpenTelemetry spans, one span
// per command, attributed with the command's INS/P1P2 and the resulting
// status word. It is transport-independent: whatever delivers APDUs to
// the state machine (a replay queue, a test, a real reader) gets the
// same spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	terrors "github.com/cardsim/termauth/errors"
	"github.com/cardsim/termauth/ta"
)

// NewProvider constructs a TracerProvider for serviceName, installs it
// as the global provider, and returns it so callers can Shutdown on
// exit. Extra options (exporters, span processors) are passed through
// to the SDK; with none, spans are created but not exported anywhere.
func NewProvider(serviceName string, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: building resource: %w", err)
	}
	opts = append(opts, sdktrace.WithResource(res))
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// Dispatcher decorates a state machine's Dispatch with a span per APDU.
type Dispatcher struct {
	sm     *ta.StateMachine
	tracer trace.Tracer
}

// NewDispatcher wraps sm using the given TracerProvider (the global one
// if tp is nil).
func NewDispatcher(sm *ta.StateMachine, tp trace.TracerProvider) *Dispatcher {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Dispatcher{sm: sm, tracer: tp.Tracer("github.com/cardsim/termauth/tracing")}
}

// Dispatch routes cmd to the state machine inside a span.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd ta.Command) ta.Response {
	_, span := d.tracer.Start(ctx, "ta.Dispatch", trace.WithAttributes(
		attribute.Int("apdu.ins", int(cmd.INS)),
		attribute.Int("apdu.p1p2", int(cmd.P1P2)),
		attribute.Bool("apdu.secure_messaged", cmd.SecureMessaged),
	))
	defer span.End()

	resp := d.sm.Dispatch(cmd)

	span.SetAttributes(attribute.String("apdu.status", fmt.Sprintf("%04X", uint16(resp.Status))))
	if resp.Status != terrors.SW9000 {
		span.SetStatus(codes.Error, resp.Reason)
	}
	return resp
}
