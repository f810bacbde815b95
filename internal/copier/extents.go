package copier

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/trim21/errgo"

	"xcp/internal/pkg/sysfs"
)

// Extent is a run of data in a sparse file.
type Extent struct {
	Offset int64
	Length int64
}

func (e Extent) End() int64 {
	return e.Offset + e.Length
}

// Extents lists the data regions of f below size by alternating SEEK_DATA and SEEK_HOLE.
// Everything between two extents is a hole.
//
// It moves the file position of f. On filesystems without SEEK_DATA support the whole file is
// reported as one extent.
func Extents(f sysfs.File, size int64) ([]Extent, error) {
	var extents []Extent
	var offset int64

	for offset < size {
		data, err := sysfs.Seek(f, offset, sysfs.SeekData)
		if err != nil {
			if offset == 0 && errors.Is(err, syscall.EINVAL) {
				return []Extent{{Offset: 0, Length: size}}, nil
			}

			return nil, errgo.Wrap(err, fmt.Sprintf("failed to seek data from %d", offset))
		}

		if data.EOF || data.Offset >= size {
			break
		}

		hole, err := sysfs.Seek(f, data.Offset, sysfs.SeekHole)
		if err != nil {
			return nil, errgo.Wrap(err, fmt.Sprintf("failed to seek hole from %d", data.Offset))
		}

		end := size
		if !hole.EOF && hole.Offset < size {
			end = hole.Offset
		}

		extents = append(extents, Extent{Offset: data.Offset, Length: end - data.Offset})
		offset = end
	}

	return extents, nil
}
