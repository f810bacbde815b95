//go:build release

package as

func Int64[T int8 | int16 | int32 | int | uint8 | uint16 | uint32 | uint64 | uint](v T) int64 {
	return int64(v)
}

func Uint64[T int8 | int16 | int32 | int64 | int | uint8 | uint16 | uint32 | uint](v T) uint64 {
	return uint64(v)
}
