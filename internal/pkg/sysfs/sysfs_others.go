//go:build !linux

package sysfs

import "errors"

func CopyRange(File, int64, File, int64, uint64) (uint64, error) {
	return 0, errors.ErrUnsupported
}

func CopyChunk(File, File, int64, uint64) (uint64, error) {
	return 0, errors.ErrUnsupported
}

func CopyBytes(File, File, uint64) (uint64, error) {
	return 0, errors.ErrUnsupported
}

func Stat(File) (FileStatus, error) {
	return FileStatus{}, errors.ErrUnsupported
}

func Allocate(File, uint64) error {
	return errors.ErrUnsupported
}

func Seek(File, int64, Whence) (SeekResult, error) {
	return SeekResult{}, errors.ErrUnsupported
}

func ProbablySparse(File) (bool, error) {
	return false, errors.ErrUnsupported
}
