package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.StatusTransition("draft", "registration_open", "sweep")
	c.StatusTransition("draft", "registration_open", "sweep")
	c.SweepFinished(120*time.Millisecond, 2)
	c.SweepFinished(80*time.Millisecond, 0)
	c.MatchEventRecorded("goal")
	c.NotificationFailed("team_approved")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.statusTransitions.WithLabelValues("draft", "registration_open", "sweep")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.sweepFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.matchEvents.WithLabelValues("goal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notificationFailures.WithLabelValues("team_approved")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "league_status_sweep_duration_seconds")
}
