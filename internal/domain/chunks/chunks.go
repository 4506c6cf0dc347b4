package chunks

import (
	"errors"

	"github.com/forPelevin/goalcut/internal/types"
)

var ErrInvalidChunkLength = errors.New("chunk length must be > 0")

// Plan splits [0, durationSec) into consecutive windows of chunkLenSec
// seconds. The final window is clamped to the media end and may be shorter.
// Indices are 1-based and follow generation order. A non-positive duration
// yields no windows; a non-positive chunk length is a configuration error.
func Plan(durationSec, chunkLenSec int) ([]types.ChunkWindow, error) {
	if chunkLenSec <= 0 {
		return nil, ErrInvalidChunkLength
	}
	if durationSec <= 0 {
		return nil, nil
	}

	out := make([]types.ChunkWindow, 0, (durationSec+chunkLenSec-1)/chunkLenSec)
	idx := 1
	for start := 0; start < durationSec; start += chunkLenSec {
		end := start + chunkLenSec
		if end > durationSec {
			end = durationSec
		}
		out = append(out, types.ChunkWindow{Index: idx, Start: start, End: end})
		idx++
	}
	return out, nil
}
