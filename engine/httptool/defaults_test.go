package httptool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHeaders(t *testing.T) {
	t.Run("Should canonicalize names and drop empty ones", func(t *testing.T) {
		d := NewDefaultHeaders(map[string]string{"user-agent": "a", "": "skip"})

		assert.Equal(t, map[string]string{"User-Agent": "a"}, d.Snapshot())
	})

	t.Run("Should merge by overwriting matching keys case-insensitively", func(t *testing.T) {
		d := NewDefaultHeaders(map[string]string{"User-Agent": "a", "Accept": "*/*"})

		current, err := d.Merge(map[string]string{"user-agent": "b", "X-New": ""})

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"User-Agent": "b", "Accept": "*/*", "X-New": ""}, current)
	})

	t.Run("Should replace every existing default", func(t *testing.T) {
		d := NewDefaultHeaders(map[string]string{"User-Agent": "a"})

		current := d.Replace(map[string]string{})

		assert.Empty(t, current)
		assert.Empty(t, d.Snapshot())
	})

	t.Run("Should hand out copies", func(t *testing.T) {
		d := NewDefaultHeaders(map[string]string{"User-Agent": "a"})

		snap := d.Snapshot()
		snap["User-Agent"] = "mutated"

		assert.Equal(t, "a", d.Snapshot()["User-Agent"])
	})
}

func TestMergeHeaders(t *testing.T) {
	t.Run("Should leave both inputs untouched", func(t *testing.T) {
		base := map[string]string{"A": "1"}
		overlay := map[string]string{"B": "2"}

		out, err := mergeHeaders(base, overlay)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"A": "1", "B": "2"}, out)
		assert.Len(t, base, 1)
		assert.Len(t, overlay, 1)
	})
}
