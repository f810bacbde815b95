package copier

import (
	"fmt"
	"runtime"

	"github.com/docker/go-units"
)

// DefaultChunkSize is how much a single copy_file_range call is asked to move.
const DefaultChunkSize = units.MiB * 128

type SparseMode uint8

const (
	// SparseAuto copies extent by extent when the source looks sparse.
	SparseAuto SparseMode = iota
	SparseAlways
	SparseNever
)

func (m SparseMode) String() string {
	switch m {
	case SparseAuto:
		return "auto"
	case SparseAlways:
		return "always"
	case SparseNever:
		return "never"
	}

	return fmt.Sprintf("SparseMode(%d)", uint8(m))
}

func ParseSparseMode(s string) (SparseMode, error) {
	switch s {
	case "", "auto":
		return SparseAuto, nil
	case "always":
		return SparseAlways, nil
	case "never":
		return SparseNever, nil
	}

	return SparseAuto, fmt.Errorf("invalid sparse mode %q, only 'auto'(default) 'always' or 'never' are allowed", s)
}

type Options struct {
	// Workers bounds how many extents of one file are copied at the same time.
	Workers   int
	ChunkSize int64
	Sparse    SparseMode
	// Preallocate reserves blocks for non-sparse copies before writing.
	Preallocate bool
	// Link hard links instead of copying when source and destination share a filesystem.
	Link bool
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}

	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}

	return o
}
