package copier_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/go-units"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"xcp/internal/copier"
	"xcp/internal/pkg/sysfs"
)

func randomBytes(n int) []byte {
	b := make([]byte, n)
	lo.Must(io.ReadFull(rand.Reader, b))
	return b
}

// sparseSource creates a file of size bytes that holds 4KiB of random data at each offset.
func sparseSource(t *testing.T, dir string, size int64, offsets ...int64) string {
	t.Helper()

	p := filepath.Join(dir, "sparse.bin")
	f := lo.Must(os.Create(p))
	defer f.Close()

	require.NoError(t, sysfs.Allocate(f, uint64(size)))
	for _, off := range offsets {
		lo.Must(f.WriteAt(randomBytes(4*units.KiB), off))
	}
	require.NoError(t, f.Sync())

	return p
}

func requireSameContent(t *testing.T, expected, actual string) {
	t.Helper()

	require.True(t, bytes.Equal(lo.Must(os.ReadFile(expected)), lo.Must(os.ReadFile(actual))),
		"%s and %s differ", expected, actual)
}

func requireNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	for _, e := range lo.Must(os.ReadDir(dir)) {
		require.NotContains(t, e.Name(), ".xcp-")
	}
}

func TestExtents(t *testing.T) {
	t.Parallel()

	p := sparseSource(t, t.TempDir(), units.MiB, 0, units.MiB-4*units.KiB)
	f := lo.Must(os.Open(p))
	defer f.Close()

	extents, err := copier.Extents(f, units.MiB)
	require.NoError(t, err)
	require.Equal(t, []copier.Extent{
		{Offset: 0, Length: 4 * units.KiB},
		{Offset: units.MiB - 4*units.KiB, Length: 4 * units.KiB},
	}, extents)
	require.Equal(t, int64(units.MiB), extents[1].End())
}

func TestExtentsAllHole(t *testing.T) {
	t.Parallel()

	p := sparseSource(t, t.TempDir(), units.MiB)
	f := lo.Must(os.Open(p))
	defer f.Close()

	extents, err := copier.Extents(f, units.MiB)
	require.NoError(t, err)
	require.Empty(t, extents)
}

func TestExtentsDense(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "dense.bin")
	require.NoError(t, os.WriteFile(p, randomBytes(100*units.KiB), 0o600))

	f := lo.Must(os.Open(p))
	defer f.Close()

	extents, err := copier.Extents(f, 100*units.KiB)
	require.NoError(t, err)
	require.Equal(t, []copier.Extent{{Offset: 0, Length: 100 * units.KiB}}, extents)
}

func TestCopyFileSparse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := sparseSource(t, dir, 4*units.MiB, 0, units.MiB, 3*units.MiB+8*units.KiB)
	dst := filepath.Join(dir, "out.bin")

	stats, err := copier.New(copier.Options{Workers: 2}).CopyFile(context.Background(), src, dst)
	require.NoError(t, err)

	require.EqualValues(t, 1, stats.Files)
	require.EqualValues(t, 1, stats.SparseFiles)
	require.EqualValues(t, 3, stats.Extents)
	require.EqualValues(t, 12*units.KiB, stats.Copied)
	require.EqualValues(t, 4*units.MiB-12*units.KiB, stats.Skipped)
	require.GreaterOrEqual(t, stats.AvgRate, int64(0))

	requireSameContent(t, src, dst)
	requireNoTempFiles(t, dir)

	out := lo.Must(os.Open(dst))
	defer out.Close()

	sparse, err := sysfs.ProbablySparse(out)
	require.NoError(t, err)
	require.True(t, sparse)
}

func TestCopyFileFull(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "dense.bin")
	require.NoError(t, os.WriteFile(src, randomBytes(units.MiB+17), 0o640))
	dst := filepath.Join(dir, "out.bin")

	c := copier.New(copier.Options{Sparse: copier.SparseNever, ChunkSize: 64 * units.KiB, Preallocate: true})
	stats, err := c.CopyFile(context.Background(), src, dst)
	require.NoError(t, err)
	require.EqualValues(t, units.MiB+17, stats.Copied)
	require.Zero(t, stats.SparseFiles)
	require.Zero(t, stats.Skipped)

	requireSameContent(t, src, dst)
	require.Equal(t, os.FileMode(0o640), lo.Must(os.Stat(dst)).Mode().Perm())
}

func TestCopyFileSparseAlwaysOnDenseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "dense.bin")
	require.NoError(t, os.WriteFile(src, randomBytes(300*units.KiB), 0o600))
	dst := filepath.Join(dir, "out.bin")

	stats, err := copier.New(copier.Options{Sparse: copier.SparseAlways, ChunkSize: 32 * units.KiB}).
		CopyFile(context.Background(), src, dst)
	require.NoError(t, err)
	require.EqualValues(t, 300*units.KiB, stats.Copied)
	require.EqualValues(t, 1, stats.Extents)

	requireSameContent(t, src, dst)
}

func TestCopyFileEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(src, nil, 0o600))
	dst := filepath.Join(dir, "out")

	stats, err := copier.New(copier.Options{}).CopyFile(context.Background(), src, dst)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Files)
	require.Zero(t, lo.Must(os.Stat(dst)).Size())
}

func TestCopyFileReplacesDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("old content that is longer"), 0o600))

	_, err := copier.New(copier.Options{}).CopyFile(context.Background(), src, dst)
	require.NoError(t, err)
	require.Equal(t, "new", string(lo.Must(os.ReadFile(dst))))
}

func TestCopyFileLink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("linked"), 0o600))

	stats, err := copier.New(copier.Options{Link: true}).CopyFile(context.Background(), src, dst)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Linked)
	require.Zero(t, stats.Copied)

	require.True(t, os.SameFile(lo.Must(os.Stat(src)), lo.Must(os.Stat(dst))))
	requireNoTempFiles(t, dir)
}

func TestCopyFileNotRegular(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := copier.New(copier.Options{}).CopyFile(context.Background(), dir, filepath.Join(dir, "out"))
	require.ErrorIs(t, err, copier.ErrNotRegular)
}

func TestCopyFileCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, randomBytes(64*units.KiB), 0o600))
	dst := filepath.Join(dir, "dst")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := copier.New(copier.Options{Sparse: copier.SparseNever}).CopyFile(ctx, src, dst)
	require.Error(t, err)

	_, err = os.Stat(dst)
	require.ErrorIs(t, err, os.ErrNotExist)
	requireNoTempFiles(t, dir)
}

func TestParseSparseMode(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]copier.SparseMode{
		"":       copier.SparseAuto,
		"auto":   copier.SparseAuto,
		"always": copier.SparseAlways,
		"never":  copier.SparseNever,
	} {
		got, err := copier.ParseSparseMode(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := copier.ParseSparseMode("maybe")
	require.Error(t, err)
}
