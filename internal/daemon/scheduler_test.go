package daemon

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleVerifyRunsPeriodically(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	var runs atomic.Int32
	id, err := s.ScheduleVerify(20*time.Millisecond, func() { runs.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.Jobs())

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestScheduleVerifyRejectsNonPositiveInterval(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.ScheduleVerify(0, func() {})
	require.Error(t, err)
	assert.Equal(t, 0, s.Jobs())
}
