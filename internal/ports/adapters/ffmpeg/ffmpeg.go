package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ProbeDuration(ctx context.Context, inPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// ExtractRange re-encodes the [startSec, endSec) slice of the input into a
// standalone mp4 (H.264 video, AAC audio). Used both for chunk production and
// for cutting the merged highlight windows.
func (a *Adapter) ExtractRange(ctx context.Context, inPath string, startSec, endSec int, outPath string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", strconv.Itoa(startSec),
		"-to", strconv.Itoa(endSec),
		"-i", inPath,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		outPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract range: %w\n%s", err, string(b))
	}
	return nil
}

// Concat stitches the given clips into outPath in list order using the concat
// demuxer. The clips all come from ExtractRange so their codecs match and a
// stream copy is enough.
func (a *Adapter) Concat(ctx context.Context, clipPaths []string, outPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("ffmpeg concat: no clips")
	}

	listPath := filepath.Join(filepath.Dir(outPath), "concat_list.txt")
	if err := os.WriteFile(listPath, []byte(concatList(clipPaths)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))
	}
	return nil
}

func concatList(clipPaths []string) string {
	var b strings.Builder
	for _, p := range clipPaths {
		b.WriteString("file '")
		b.WriteString(escapeConcatPath(p))
		b.WriteString("'\n")
	}
	return b.String()
}

func escapeConcatPath(p string) string {
	// Single quotes inside a quoted concat entry need the '\'' dance.
	return strings.ReplaceAll(p, "'", `'\''`)
}
