package goals

import (
	"sort"

	"github.com/forPelevin/goalcut/internal/types"
)

// Merge expands every global timestamp into a padded window and collapses
// overlapping or touching windows into the minimal disjoint set, clamped to
// [0, durationSec]. Windows that clamp to zero width are dropped. The sort
// makes the result depend only on the timestamp multiset, not arrival order.
func Merge(stamps []int, preSec, postSec, durationSec int) []types.Interval {
	if len(stamps) == 0 {
		return nil
	}

	padded := make([]types.Interval, 0, len(stamps))
	for _, c := range stamps {
		padded = append(padded, types.Interval{Start: c - preSec, End: c + postSec})
	}
	sort.Slice(padded, func(i, j int) bool { return padded[i].Start < padded[j].Start })

	merged := make([]types.Interval, 0, len(padded))
	merged = append(merged, padded[0])
	for _, iv := range padded[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	out := make([]types.Interval, 0, len(merged))
	for _, iv := range merged {
		if iv.Start < 0 {
			iv.Start = 0
		}
		if iv.End > durationSec {
			iv.End = durationSec
		}
		if iv.Start >= iv.End {
			continue
		}
		out = append(out, iv)
	}
	return out
}
