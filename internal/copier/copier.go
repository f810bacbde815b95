// Package copier copies files and directory trees with copy_file_range(2), keeping holes of
// sparse sources as holes in the destination.
package copier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dchest/uniuri"
	"github.com/negrel/assert"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/trim21/errgo"

	"xcp/internal/pkg/as"
	"xcp/internal/pkg/fallocate"
	"xcp/internal/pkg/sysfs"
)

var ErrNotRegular = errors.New("not a regular file")

// Copier is safe for concurrent use.
type Copier struct {
	log  zerolog.Logger
	opts Options
}

func New(opts Options) *Copier {
	return &Copier{
		opts: opts.withDefaults(),
		log:  log.With().Str("component", "copier").Logger(),
	}
}

// CopyFile copies the regular file src to dst, replacing dst if it exists.
// The destination is written under a temporary name and renamed into place once complete.
func (c *Copier) CopyFile(ctx context.Context, src, dst string) (Stats, error) {
	cnt := newCounters()

	in, err := os.Open(src)
	if err != nil {
		return cnt.finish(), errgo.Wrap(err, "failed to open source file")
	}
	defer in.Close()

	st, err := sysfs.Stat(in)
	if err != nil {
		return cnt.finish(), errgo.Wrap(err, fmt.Sprintf("failed to stat %q", src))
	}

	err = c.copyOpen(ctx, in, st, dst, cnt)

	return cnt.finish(), err
}

func (c *Copier) copyOpen(ctx context.Context, in *os.File, st sysfs.FileStatus, dst string, cnt *counters) error {
	if !st.IsRegular() {
		return fmt.Errorf("%q: %w", in.Name(), ErrNotRegular)
	}

	if c.opts.Link {
		linked, err := tryLink(in.Name(), dst)
		if err != nil {
			return err
		}

		if linked {
			cnt.files.Inc()
			cnt.linked.Inc()
			return nil
		}
	}

	logger := c.log.With().Str("src", in.Name()).Str("dst", dst).Logger()

	tmpName := tempName(dst)
	out, err := os.OpenFile(tmpName, os.O_RDWR|os.O_CREATE|os.O_EXCL, st.Perm())
	if err != nil {
		return errgo.Wrap(err, "failed to create destination file")
	}

	if err = c.copyData(ctx, logger, in, out, st, cnt); err == nil {
		// umask may have dropped bits
		err = out.Chmod(st.Perm())
	}

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Rename(tmpName, dst)
	}

	if err != nil {
		_ = os.Remove(tmpName)
		return errgo.Wrap(err, fmt.Sprintf("failed to copy %q", in.Name()))
	}

	cnt.files.Inc()
	logger.Debug().Msg("copied")

	return nil
}

func (c *Copier) copyData(ctx context.Context, logger zerolog.Logger, in, out *os.File, st sysfs.FileStatus, cnt *counters) error {
	size := st.Size

	if err := sysfs.Allocate(out, as.Uint64(size)); err != nil {
		return errgo.Wrap(err, "failed to size destination file")
	}

	if size == 0 {
		return nil
	}

	sparse, err := c.sparse(in)
	if err != nil {
		return err
	}

	if !sparse {
		if c.opts.Preallocate {
			if err := fallocate.Fallocate(out, 0, size); err != nil {
				return errgo.Wrap(err, "failed to preallocate destination file")
			}
		}

		logger.Debug().Int64("size", size).Msg("full copy")
		return c.copySequential(ctx, in, out, size, cnt)
	}

	extents, err := Extents(in, size)
	if err != nil {
		return err
	}

	var data int64
	for _, e := range extents {
		data += e.Length
	}

	logger.Debug().Int("extents", len(extents)).Int64("data", data).Int64("size", size).Msg("sparse copy")

	cnt.sparseFiles.Inc()
	cnt.extents.Add(int64(len(extents)))
	cnt.skipped.Add(size - data)

	return c.copyExtents(ctx, in, out, extents, cnt)
}

func (c *Copier) sparse(in *os.File) (bool, error) {
	switch c.opts.Sparse {
	case SparseAlways:
		return true, nil
	case SparseNever:
		return false, nil
	}

	sparse, err := sysfs.ProbablySparse(in)
	if err != nil {
		return false, errgo.Wrap(err, "failed to check sparseness")
	}

	return sparse, nil
}

// copySequential copies [0, size) letting the kernel advance both file positions.
func (c *Copier) copySequential(ctx context.Context, in, out *os.File, size int64, cnt *counters) error {
	remaining := size

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := sysfs.CopyBytes(in, out, as.Uint64(min(c.opts.ChunkSize, remaining)))
		if err != nil {
			return err
		}

		if n == 0 {
			return fmt.Errorf("source shrank with %d bytes left: %w", remaining, io.ErrUnexpectedEOF)
		}

		remaining -= as.Int64(n)
		cnt.progress(as.Int64(n))
	}

	return nil
}

func (c *Copier) copyExtents(ctx context.Context, in, out *os.File, extents []Extent, cnt *counters) error {
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(c.opts.Workers)

	for _, e := range extents {
		e := e
		p.Go(func(ctx context.Context) error {
			return c.copyExtent(ctx, in, out, e, cnt)
		})
	}

	return p.Wait()
}

// copyExtent copies e to the same offset in out. Offsets are explicit, so extents of one file
// can be copied concurrently.
func (c *Copier) copyExtent(ctx context.Context, in, out *os.File, e Extent, cnt *counters) error {
	offset, end := e.Offset, e.End()

	for offset < end {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := sysfs.CopyChunk(in, out, offset, as.Uint64(min(c.opts.ChunkSize, end-offset)))
		if err != nil {
			return errgo.Wrap(err, fmt.Sprintf("failed to copy extent at %d", offset))
		}

		if n == 0 {
			return fmt.Errorf("source shrank at offset %d: %w", offset, io.ErrUnexpectedEOF)
		}

		offset += as.Int64(n)
		cnt.progress(as.Int64(n))
	}

	assert.Equal(offset, end)

	return nil
}

func tempName(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".xcp-"+uniuri.NewLen(8))
}
