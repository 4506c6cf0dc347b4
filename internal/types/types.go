package types

// FailureSentinel replaces model output when inference exhausts its retry
// budget for a chunk. Downstream it is indistinguishable from "no goal
// detected", which keeps a flaky chunk from aborting the whole run.
const FailureSentinel = "[]"

// ChunkWindow is one contiguous slice of the source timeline, the unit
// submitted to inference. Start is inclusive, End exclusive, both in seconds.
type ChunkWindow struct {
	Index int
	Start int
	End   int
}

func (w ChunkWindow) Length() int { return w.End - w.Start }

// ClipResult pairs a chunk with the raw text the model returned for it.
// Exactly one is collected per chunk, in index order, and never mutated.
type ClipResult struct {
	Chunk ChunkWindow
	Raw   string
}

// Interval is a [Start, End) second range on the source timeline.
type Interval struct {
	Start int
	End   int
}

func (iv Interval) Length() int { return iv.End - iv.Start }

type Report struct {
	Input    string         `json:"input"`
	Output   string         `json:"output,omitempty"`
	Duration int            `json:"duration_sec"`
	Goals    []ReportGoal   `json:"goals"`
	Windows  []ReportWindow `json:"windows"`
}

type ReportGoal struct {
	Sec   int    `json:"sec"`
	Clock string `json:"clock"`
}

type ReportWindow struct {
	StartSec int `json:"start_sec"`
	EndSec   int `json:"end_sec"`
}
