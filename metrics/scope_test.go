package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPromScopeRecordsWithoutPanicking(t *testing.T) {
	reg := prometheus.NewRegistry()
	scope := NewPromScope(reg, "ta")

	scope.Inc("Handler.SetDST.Calls", 1)
	scope.Gauge("Session.Active", 3)
	scope.GaugeDelta("Session.Active", -1)
	scope.TimingDuration("Handler.SetDST.Latency", 10*time.Millisecond)

	sub := scope.NewScope("PSOVerify")
	sub.Inc("Calls", 1)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)
}

func TestNoopScope(t *testing.T) {
	scope := NewNoopScope()
	scope.Inc("x", 1)
	scope.Gauge("x", 1)
	scope.GaugeDelta("x", 1)
	scope.TimingDuration("x", time.Second)
	require.Equal(t, scope, scope.NewScope("y"))
}
