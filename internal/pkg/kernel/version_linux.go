package kernel

import (
	"golang.org/x/sys/unix"
)

// Version returns the major and minor version of the running kernel, or zeros when uname fails.
func Version() (major, minor int) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return
	}

	return parseRelease(unix.ByteSliceToString(uname.Release[:]))
}
