//go:build !linux

package kernel

func Version() (major, minor int) {
	return 0, 0
}
