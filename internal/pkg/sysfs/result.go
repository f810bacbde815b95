package sysfs

import (
	"errors"
	"os"
	"syscall"
)

// toResult interprets the raw return value of a syscall. -1 means failure and errno holds the
// code recorded for that call, any other value is success and v is returned.
// It must see the errno of the same call that produced r.
func toResult[T any](op string, r int64, errno syscall.Errno, v T) (T, error) {
	if r == -1 {
		var zero T
		return zero, os.NewSyscallError(op, errno)
	}

	return v, nil
}

// fromErr is toResult for the x/sys wrappers, which already turned -1 into an Errno.
func fromErr[T any](op string, err error, v T) (T, error) {
	if err == nil {
		return v, nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return toResult(op, -1, errno, v)
	}

	var zero T
	return zero, os.NewSyscallError(op, err)
}
