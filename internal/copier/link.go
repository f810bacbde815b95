package copier

import (
	"errors"
	"os"
	"syscall"

	"github.com/trim21/errgo"
)

// replaced in tests
var linkFile = os.Link

// tryLink hard links src to dst, replacing dst. linked is false when the two paths are on
// different filesystems and the caller should copy instead.
func tryLink(src, dst string) (linked bool, err error) {
	// https://devblogs.microsoft.com/oldnewthing/20170707-00/?p=96555
	tmp := tempName(dst)
	err = linkFile(src, tmp)
	if err == nil {
		if err = os.Rename(tmp, dst); err != nil {
			_ = os.Remove(tmp)
			return false, errgo.Wrap(err, "failed to replace destination with link")
		}

		return true, nil
	}

	if errors.Is(err, syscall.EXDEV) {
		return false, nil
	}

	return false, err
}
