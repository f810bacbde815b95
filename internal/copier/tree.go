package copier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/trim21/errgo"

	"xcp/internal/pkg/global"
	"xcp/internal/pkg/sysfs"
)

type inode struct {
	dev uint64
	ino uint64
}

// linkTarget is the first destination written for a source inode with several names.
type linkTarget struct {
	done chan struct{}
	err  error
	path string
}

type dirMode struct {
	path string
	perm os.FileMode
}

// CopyTree copies the directory src to dst. Directories and symlinks are recreated while the
// walk runs, regular files are copied on the global pool. Sources hard linked to each other are
// hard linked in dst too.
//
// The first error stops the walk and cancels pending copies.
func (c *Copier) CopyTree(ctx context.Context, src, dst string) (Stats, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		cnt   = newCounters()
		wg    sync.WaitGroup
		dirs  []dirMode
		links = xsync.NewMapOf[inode, *linkTarget]()
	)

	walkErr := godirwalk.Walk(src, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}

			rel, err := filepath.Rel(src, osPathname)
			if err != nil {
				return err
			}

			target := filepath.Join(dst, rel)

			switch {
			case de.IsDir():
				fi, err := os.Lstat(osPathname)
				if err != nil {
					return err
				}

				// owner needs write access until the copy is done, the real mode is applied last
				if err := os.MkdirAll(target, 0o700); err != nil {
					return errgo.Wrap(err, "failed to create directory")
				}

				dirs = append(dirs, dirMode{path: target, perm: fi.Mode().Perm()})
			case de.IsSymlink():
				return copySymlink(osPathname, target)
			case de.IsRegular():
				wg.Add(1)
				err := global.Pool.Submit(func() {
					defer wg.Done()
					if err := c.copyTreeFile(ctx, osPathname, target, links, cnt); err != nil {
						cancel(err)
					}
				})
				if err != nil {
					wg.Done()
					return errgo.Wrap(err, "failed to schedule copy")
				}
			default:
				c.log.Debug().Str("path", osPathname).Msg("skip special file")
			}

			return nil
		},
	})

	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return cnt.finish(), err
	}

	if walkErr != nil {
		return cnt.finish(), walkErr
	}

	// children first, so a read-only parent doesn't block chmod of its children
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chmod(dirs[i].path, dirs[i].perm); err != nil {
			return cnt.finish(), errgo.Wrap(err, "failed to set directory mode")
		}
	}

	return cnt.finish(), nil
}

func (c *Copier) copyTreeFile(ctx context.Context, src, dst string, links *xsync.MapOf[inode, *linkTarget], cnt *counters) error {
	in, err := os.Open(src)
	if err != nil {
		return errgo.Wrap(err, "failed to open source file")
	}
	defer in.Close()

	st, err := sysfs.Stat(in)
	if err != nil {
		return errgo.Wrap(err, fmt.Sprintf("failed to stat %q", src))
	}

	if st.Nlink <= 1 {
		return c.copyOpen(ctx, in, st, dst, cnt)
	}

	first, loaded := links.LoadOrStore(inode{dev: st.Dev, ino: st.Ino}, &linkTarget{path: dst, done: make(chan struct{})})
	if !loaded {
		first.err = c.copyOpen(ctx, in, st, dst, cnt)
		close(first.done)
		return first.err
	}

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-first.done:
	}

	if first.err != nil {
		return nil
	}

	linked, err := tryLink(first.path, dst)
	if err != nil {
		return err
	}

	if !linked {
		return c.copyOpen(ctx, in, st, dst, cnt)
	}

	cnt.files.Inc()
	cnt.linked.Inc()

	return nil
}

func copySymlink(src, dst string) error {
	dest, err := os.Readlink(src)
	if err != nil {
		return err
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return errgo.Wrap(err, "failed to replace destination")
	}

	return os.Symlink(dest, dst)
}
