package sysfs

import (
	"math"
	"runtime"
)

const opCopyFileRange = "copy_file_range"

// CopyRange copies up to length bytes from src at srcOffset to dst at dstOffset inside the
// kernel. Neither descriptor's position moves.
//
// The returned count may be smaller than length, callers that need the whole range must loop.
// Errors such as EXDEV, EINVAL or EOPNOTSUPP are returned as is.
func CopyRange(src File, srcOffset int64, dst File, dstOffset int64, length uint64) (uint64, error) {
	n, errno := copyFileRange(int(src.Fd()), &srcOffset, int(dst.Fd()), &dstOffset, clampLength(length), 0)
	runtime.KeepAlive(src)
	runtime.KeepAlive(dst)

	return toResult(opCopyFileRange, n, errno, uint64(n))
}

// CopyChunk copies up to length bytes at offset in src to the same offset in dst.
func CopyChunk(src File, dst File, offset int64, length uint64) (uint64, error) {
	return CopyRange(src, offset, dst, offset, length)
}

// CopyBytes copies up to length bytes from the current position of src to the current position
// of dst, and advances both positions by the number of bytes copied.
func CopyBytes(src File, dst File, length uint64) (uint64, error) {
	n, errno := copyFileRange(int(src.Fd()), nil, int(dst.Fd()), nil, clampLength(length), 0)
	runtime.KeepAlive(src)
	runtime.KeepAlive(dst)

	return toResult(opCopyFileRange, n, errno, uint64(n))
}

// size_t is as wide as int, longer requests are a partial copy anyway.
func clampLength(length uint64) int {
	if length > math.MaxInt {
		return math.MaxInt
	}

	return int(length)
}
