package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/goalcut/internal/domain/chunks"
	"github.com/forPelevin/goalcut/internal/domain/goals"
	"github.com/forPelevin/goalcut/internal/ports"
	"github.com/forPelevin/goalcut/internal/types"
)

// OutputName is the fixed name of the assembled highlight reel.
const OutputName = "final_highlights.mp4"

const goalPrompt = "Tell me the timestamp of a team scoring, be sure that the net moves. " +
	"It might happen that there is no goal, or more than 1. Return **only** the list of timestamps " +
	"of goals, something like this: [00:00:12, 00:00:29, ...], in case there is no goal then []. " +
	"**IMPORTANT**: don't output any other character apart from the list"

type Deps struct {
	Video     ports.VideoTool
	Inference ports.Inference
	Logger    *zap.Logger

	// Sleep is the backoff delay between analysis retries, injected so tests
	// run without real elapsed time.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Sleep == nil {
		d.Sleep = func(ctx context.Context, dur time.Duration) error {
			t := time.NewTimer(dur)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}
	return Usecase{d: d}
}

type Input struct {
	InputPath string
	OutDir    string
	WorkDir   string

	ChunkLenSec   int
	PreSec        int
	PostSec       int
	RetryAttempts int
	RetryBackoff  time.Duration
}

type Result struct {
	Report types.Report

	// Output is empty when no highlights were found and assembly was skipped.
	Output string
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	durFloat, err := u.d.Video.ProbeDuration(ctx, in.InputPath)
	if err != nil {
		return Result{}, err
	}
	durationSec := int(durFloat)

	windows, err := chunks.Plan(durationSec, in.ChunkLenSec)
	if err != nil {
		return Result{}, err
	}
	u.d.Logger.Info("planned chunks",
		zap.Int("duration_sec", durationSec),
		zap.Int("chunk_len_sec", in.ChunkLenSec),
		zap.Int("chunks", len(windows)))

	// Chunks are processed strictly one at a time; each transient chunk file
	// is removed before the next chunk starts, bounding disk use to one chunk.
	results := make([]types.ClipResult, 0, len(windows))
	for _, w := range windows {
		chunkPath := filepath.Join(in.WorkDir, fmt.Sprintf("part_%03d.mp4", w.Index))
		if err := u.d.Video.ExtractRange(ctx, in.InputPath, w.Start, w.End, chunkPath); err != nil {
			return Result{}, err
		}
		raw := u.analyzeChunk(ctx, w, chunkPath, in)
		_ = os.Remove(chunkPath)
		results = append(results, types.ClipResult{Chunk: w, Raw: raw})
	}

	stamps := goals.Normalize(results)
	merged := goals.Merge(stamps, in.PreSec, in.PostSec, durationSec)
	u.d.Logger.Info("merged highlight windows",
		zap.Int("goal_stamps", len(stamps)),
		zap.Int("windows", len(merged)))

	report := buildReport(in.InputPath, durationSec, stamps, merged)
	if len(merged) == 0 {
		u.d.Logger.Info("no highlights found")
		return Result{Report: report}, nil
	}

	outPath, err := u.assemble(ctx, in, merged)
	if err != nil {
		return Result{}, err
	}
	report.Output = outPath

	return Result{Report: report, Output: outPath}, nil
}

// analyzeChunk runs upload, readiness polling, and the bounded analysis retry
// loop for one chunk. Any inference failure degrades to the failure sentinel
// so the rest of the run continues; only the media backend can abort it.
func (u Usecase) analyzeChunk(ctx context.Context, w types.ChunkWindow, chunkPath string, in Input) string {
	log := u.d.Logger.With(zap.Int("chunk", w.Index))

	h, err := u.d.Inference.Upload(ctx, chunkPath)
	if err != nil {
		log.Warn("chunk upload failed, skipping", zap.Error(err))
		return types.FailureSentinel
	}

	state, err := u.d.Inference.PollUntilReady(ctx, h)
	if err != nil {
		log.Warn("chunk readiness poll failed, skipping", zap.Error(err))
		return types.FailureSentinel
	}
	if state != ports.FileStateActive {
		log.Warn("chunk never became active, skipping", zap.String("state", string(state)))
		return types.FailureSentinel
	}

	attempts := in.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := u.d.Inference.Analyze(ctx, h, goalPrompt)
		if err == nil {
			return strings.TrimSpace(raw)
		}
		log.Warn("chunk analysis failed",
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Error(err))
		if attempt < attempts {
			if serr := u.d.Sleep(ctx, in.RetryBackoff); serr != nil {
				break
			}
		}
	}

	log.Warn("analysis retry budget exhausted, treating chunk as no goals")
	return types.FailureSentinel
}

// assemble cuts one clip per merged window and concatenates them in ascending
// start order. Media backend errors propagate unmasked; no partial output.
func (u Usecase) assemble(ctx context.Context, in Input, merged []types.Interval) (string, error) {
	clipPaths := make([]string, 0, len(merged))
	defer func() {
		for _, p := range clipPaths {
			_ = os.Remove(p)
		}
	}()

	for i, iv := range merged {
		clipPath := filepath.Join(in.WorkDir, fmt.Sprintf("highlight_%03d.mp4", i+1))
		if err := u.d.Video.ExtractRange(ctx, in.InputPath, iv.Start, iv.End, clipPath); err != nil {
			return "", err
		}
		clipPaths = append(clipPaths, clipPath)
	}

	outPath := filepath.Join(in.OutDir, OutputName)
	if err := u.d.Video.Concat(ctx, clipPaths, outPath); err != nil {
		return "", err
	}
	u.d.Logger.Info("highlight reel assembled",
		zap.Int("clips", len(clipPaths)),
		zap.String("output", outPath))
	return outPath, nil
}

func buildReport(input string, durationSec int, stamps []int, merged []types.Interval) types.Report {
	r := types.Report{
		Input:    input,
		Duration: durationSec,
		Goals:    make([]types.ReportGoal, 0, len(stamps)),
		Windows:  make([]types.ReportWindow, 0, len(merged)),
	}
	for _, s := range stamps {
		r.Goals = append(r.Goals, types.ReportGoal{Sec: s, Clock: goals.ClockString(s)})
	}
	for _, iv := range merged {
		r.Windows = append(r.Windows, types.ReportWindow{StartSec: iv.Start, EndSec: iv.End})
	}
	return r
}
