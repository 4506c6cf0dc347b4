package chunks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_PartitionsTimeline(t *testing.T) {
	cases := []struct {
		name        string
		durationSec int
		chunkLenSec int
		wantChunks  int
	}{
		{"exact multiple", 180, 60, 3},
		{"short tail", 150, 60, 3},
		{"single short chunk", 10, 60, 1},
		{"one second chunks", 5, 1, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			windows, err := Plan(tc.durationSec, tc.chunkLenSec)
			require.NoError(t, err)
			require.Len(t, windows, tc.wantChunks)

			// Windows must be contiguous, cover [0, duration) exactly, and
			// carry sequential 1-based indices.
			assert.Equal(t, 0, windows[0].Start)
			assert.Equal(t, tc.durationSec, windows[len(windows)-1].End)
			for i, w := range windows {
				assert.Equal(t, i+1, w.Index)
				assert.Less(t, w.Start, w.End)
				assert.LessOrEqual(t, w.Length(), tc.chunkLenSec)
				if i > 0 {
					assert.Equal(t, windows[i-1].End, w.Start)
				}
			}
		})
	}
}

func TestPlan_LastWindowShorter(t *testing.T) {
	windows, err := Plan(150, 60)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, 120, windows[2].Start)
	assert.Equal(t, 150, windows[2].End)
	assert.Equal(t, 30, windows[2].Length())
}

func TestPlan_ZeroDuration(t *testing.T) {
	windows, err := Plan(0, 60)
	require.NoError(t, err)
	assert.Empty(t, windows)

	windows, err = Plan(-5, 60)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestPlan_InvalidChunkLength(t *testing.T) {
	_, err := Plan(120, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkLength)

	_, err = Plan(120, -1)
	assert.ErrorIs(t, err, ErrInvalidChunkLength)
}
