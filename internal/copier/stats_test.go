package copier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountersFinish(t *testing.T) {
	t.Parallel()

	cnt := newCounters()
	cnt.files.Inc()
	cnt.progress(4096)
	cnt.progress(8192)
	cnt.progress(100)

	stats := cnt.finish()
	require.EqualValues(t, 1, stats.Files)
	require.EqualValues(t, 4096+8192+100, stats.Copied)
	require.GreaterOrEqual(t, stats.AvgRate, int64(0))

	// the partial sample is flushed, nothing is left pending in the monitor
	require.EqualValues(t, 4096+8192+100, cnt.monitor.Status().Bytes)
	require.False(t, cnt.monitor.Status().Active)
}
