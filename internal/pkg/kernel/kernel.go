package kernel

// man page says copy_file_range is available after kernel 4.5, but it can't be trusted across
// filesystems before 5.3
// https://github.com/golang/go/issues/36817#issuecomment-579151790
const (
	reliableMajor = 5
	reliableMinor = 3
)

// ReliableCopyFileRange reports whether the running kernel has the 5.3 copy_file_range rework.
func ReliableCopyFileRange() bool {
	return AtLeast(reliableMajor, reliableMinor)
}

func AtLeast(major, minor int) bool {
	m, n := Version()
	return m > major || (m == major && n >= minor)
}

// from https://go.dev/src/internal/syscall/unix/kernel_version_linux.go
func parseRelease(release string) (major, minor int) {
	var (
		values    [2]int
		value, vi int
	)
	for _, c := range release {
		if '0' <= c && c <= '9' {
			value = (value * 10) + int(c-'0')
		} else {
			// Note that we're assuming N.N.N here.
			// If we see anything else, we are likely to mis-parse it.
			values[vi] = value
			vi++
			if vi >= len(values) {
				break
			}
			value = 0
		}
	}

	if vi < len(values) {
		values[vi] = value
	}

	return values[0], values[1]
}
