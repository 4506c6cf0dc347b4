package goals

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/forPelevin/goalcut/internal/types"
)

// Matches every HH:MM:SS stamp regardless of the list syntax, brackets, or
// garbage text the model wraps it in.
var clockRE = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)

// ExtractTimestamps scans raw model output for HH:MM:SS stamps and returns
// them as chunk-relative second offsets, in order of first appearance.
// Duplicates are kept; interval merging absorbs them later. Minute and second
// fields above 59 are accepted as plain overflow arithmetic: the model
// occasionally emits sloppy stamps, and padding plus clamping absorb the
// resulting shift, while rejecting them would drop genuine goals.
func ExtractTimestamps(raw string) []int {
	if raw == "" {
		return nil
	}
	matches := clockRE.FindAllString(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, clockToSec(m))
	}
	return out
}

// Normalize rebases every chunk-local timestamp onto the source timeline
// using each chunk's recorded start offset, so a shortened final chunk is
// handled the same as a full one. Chunk order then in-chunk order is
// preserved; no sorting or deduplication happens here.
func Normalize(results []types.ClipResult) []int {
	var out []int
	for _, r := range results {
		for _, t := range ExtractTimestamps(r.Raw) {
			out = append(out, r.Chunk.Start+t)
		}
	}
	return out
}

// ClockString renders a second offset as HH:MM:SS.
func ClockString(sec int) string {
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func clockToSec(s string) int {
	// The regexp guarantees the shape, so Atoi cannot fail here.
	h, _ := strconv.Atoi(s[0:2])
	m, _ := strconv.Atoi(s[3:5])
	sec, _ := strconv.Atoi(s[6:8])
	return h*3600 + m*60 + sec
}
