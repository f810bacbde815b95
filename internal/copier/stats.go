package copier

import (
	"time"

	"github.com/mxk/go-flowrate/flowrate"
	"go.uber.org/atomic"
)

type Stats struct {
	Files       int64
	Linked      int64
	SparseFiles int64
	Extents     int64
	// Copied is the number of bytes moved by the kernel.
	Copied int64
	// Skipped is the number of bytes left as holes.
	Skipped int64
	// AvgRate is bytes per second over the whole run, 0 when it finished too fast to measure.
	AvgRate int64
}

// counters accumulate one CopyFile or CopyTree run.
type counters struct {
	monitor     *flowrate.Monitor
	files       atomic.Int64
	linked      atomic.Int64
	sparseFiles atomic.Int64
	extents     atomic.Int64
	copied      atomic.Int64
	skipped     atomic.Int64
}

func newCounters() *counters {
	return &counters{monitor: flowrate.New(time.Second, time.Second)}
}

func (c *counters) progress(n int64) {
	c.copied.Add(n)
	c.monitor.Update(int(n))
}

// finish flushes the partial rate sample and returns the totals.
func (c *counters) finish() Stats {
	c.monitor.Done()

	return Stats{
		Files:       c.files.Load(),
		Linked:      c.linked.Load(),
		SparseFiles: c.sparseFiles.Load(),
		Extents:     c.extents.Load(),
		Copied:      c.copied.Load(),
		Skipped:     c.skipped.Load(),
		AvgRate:     c.monitor.Status().AvgRate,
	}
}
