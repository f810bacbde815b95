package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"xcp/internal/pkg/kernel"
)

func TestVersion(t *testing.T) {
	major, _ := kernel.Version()
	require.GreaterOrEqual(t, major, 3)
	require.True(t, kernel.AtLeast(2, 6))
}
