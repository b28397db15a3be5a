package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleDailyAt(t *testing.T) {
	t.Run("returns job id for valid time", func(t *testing.T) {
		s, err := New(time.UTC)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.ScheduleDailyAt("rollover", 0, 0, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects invalid wall-clock time", func(t *testing.T) {
		s, err := New(time.UTC)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.ScheduleDailyAt("rollover", 25, 0, func() {})
		require.Error(t, err)
	})
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New(time.UTC)
	require.NoError(t, err)

	s.Start()
	require.NoError(t, s.Stop())
}
