//go:build linux || darwin

package fallocate

import (
	"os"

	"github.com/detailyang/go-fallocate"
)

// Fallocate reserves disk blocks for [offset, offset+length) of file and grows it to cover the
// range. Unlike a truncate the range is backed by real blocks afterwards.
func Fallocate(file *os.File, offset int64, length int64) error {
	return fallocate.Fallocate(file, offset, length)
}
