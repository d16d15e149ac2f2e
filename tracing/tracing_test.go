package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	terrors "github.com/cardsim/termauth/errors"
	"github.com/cardsim/termauth/ta"
)

// newIdleMachine returns a machine with no collaborators wired: enough
// for dispatch-rejection paths, which is all these tests drive.
func newIdleMachine() *ta.StateMachine {
	return ta.New(ta.Config{})
}

func TestDispatchRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	d := NewDispatcher(newIdleMachine(), tp)
	resp := d.Dispatch(context.Background(), ta.Command{INS: 0x84, SecureMessaged: false})
	require.Equal(t, terrors.SW6982, resp.Status)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "ta.Dispatch", spans[0].Name())

	attrs := spans[0].Attributes()
	var sawStatus bool
	for _, kv := range attrs {
		if string(kv.Key) == "apdu.status" {
			sawStatus = true
			require.Equal(t, "6982", kv.Value.AsString())
		}
	}
	require.True(t, sawStatus)
}

func TestNewProviderInstallsGlobal(t *testing.T) {
	tp, err := NewProvider("tasim-test")
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	d := NewDispatcher(newIdleMachine(), nil)
	resp := d.Dispatch(context.Background(), ta.Command{INS: 0x00, SecureMessaged: false})
	require.Equal(t, terrors.SW6982, resp.Status)
}
