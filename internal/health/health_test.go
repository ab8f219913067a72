package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_InitialUnknown(t *testing.T) {
	h := NewTracker()
	snap := h.Snapshot()
	assert.Equal(t, string(StatusUnknown), snap.Status)
	assert.Nil(t, snap.LastCompleteAt)
	assert.Zero(t, snap.P95LatencyMs)
}

func TestTracker_Transitions(t *testing.T) {
	h := NewTracker()

	h.RecordFetch(100*time.Millisecond, nil)
	assert.Equal(t, string(StatusHealthy), h.Snapshot().Status)

	for i := 0; i < DefaultUnhealthyThreshold-1; i++ {
		h.RecordFetch(100*time.Millisecond, []string{"txlist"})
		assert.Equal(t, string(StatusDegraded), h.Snapshot().Status)
	}
	h.RecordFetch(100*time.Millisecond, []string{"txlist", "balance"})
	snap := h.Snapshot()
	assert.Equal(t, string(StatusUnhealthy), snap.Status)
	assert.Equal(t, DefaultUnhealthyThreshold, snap.ConsecutiveDegraded)
	assert.Equal(t, []string{"txlist", "balance"}, snap.LastDegradedCalls)
	require.NotNil(t, snap.LastDegradedAt)

	h.RecordFetch(100*time.Millisecond, nil)
	snap = h.Snapshot()
	assert.Equal(t, string(StatusHealthy), snap.Status)
	assert.Zero(t, snap.ConsecutiveDegraded)
	require.NotNil(t, snap.LastCompleteAt)
}

func TestTracker_SlowFetchesDegrade(t *testing.T) {
	h := NewTracker()
	h.RecordFetch(10*time.Second, nil)
	assert.Equal(t, string(StatusHealthy), h.Snapshot().Status, "one sample is not enough")

	h.RecordFetch(10*time.Second, nil)
	assert.Equal(t, string(StatusDegraded), h.Snapshot().Status)
	assert.Equal(t, int64(10000), h.Snapshot().P95LatencyMs)
}

func TestTracker_LatencyWindowIsBounded(t *testing.T) {
	h := NewTracker()
	for i := 0; i < latencyWindowSize*2; i++ {
		h.RecordFetch(time.Duration(i)*time.Millisecond, nil)
	}
	assert.Len(t, h.recentLatencies, latencyWindowSize)
}
