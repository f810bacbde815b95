//go:build !release

// runtime check int overflow

package as

import (
	"fmt"
	"math"
	"reflect"
)

// Int64 converts a byte count to a file offset.
func Int64[T int8 | int16 | int32 | int | uint8 | uint16 | uint32 | uint64 | uint](v T) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		if rv.Uint() > math.MaxInt64 {
			panic(fmt.Sprintf("%d overflow int64", v))
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int:
	default:
		panic("unhandled default case")
	}

	return int64(v)
}

// Uint64 converts a file offset or size to a byte count.
func Uint64[T int8 | int16 | int32 | int64 | int | uint8 | uint16 | uint32 | uint](v T) uint64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint:
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		if rv.Int() < 0 {
			panic(fmt.Sprintf("%d overflow uint64", v))
		}
	default:
		panic("unhandled default case")
	}

	return uint64(v)
}
