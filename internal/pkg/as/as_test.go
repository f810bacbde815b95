//go:build !release

package as_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcp/internal/pkg/as"
)

func TestInt64(t *testing.T) {
	require.Equal(t, int64(5), as.Int64(uint64(5)))
	require.Equal(t, int64(5), as.Int64(int32(5)))
	require.Equal(t, int64(math.MaxInt64), as.Int64(uint64(math.MaxInt64)))

	assert.Panics(t, func() {
		as.Int64(uint64(math.MaxInt64) + 1)
	})
}

func TestUint64(t *testing.T) {
	require.Equal(t, uint64(5), as.Uint64(int64(5)))
	require.Equal(t, uint64(5), as.Uint64(5))
	require.Equal(t, uint64(0), as.Uint64(int64(0)))

	assert.Panics(t, func() {
		as.Uint64(int64(-1))
	})
}
