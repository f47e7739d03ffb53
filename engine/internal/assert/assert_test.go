package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThat(t *testing.T) {
	require.NotPanics(t, func() { That(true, "never") })
	require.PanicsWithValue(t, "assertion failed: bad dimension 7", func() {
		That(false, "bad dimension %d", 7)
	})
}
