package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/forPelevin/goalcut/internal/domain/chunks"
	"github.com/forPelevin/goalcut/internal/ports"
	"github.com/forPelevin/goalcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/goalcut/internal/ports/adapters/gemini"
	"github.com/forPelevin/goalcut/internal/usecase"
)

type Config struct {
	InputPath string
	OutDir    string

	ChunkLenSec     int
	PreSec          int
	PostSec         int
	RetryAttempts   int
	RetryBackoffSec int
	PollIntervalSec int
	PollTimeoutSec  int

	// CacheDir is the base directory for transient chunk artifacts.
	// If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	GeminiAllowedHosts []string

	Logger *zap.Logger
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	switch strings.ToLower(filepath.Ext(c.InputPath)) {
	case ".mp4", ".mov":
	default:
		return fmt.Errorf("input must be mp4 or mov, got %q", filepath.Ext(c.InputPath))
	}
	if c.ChunkLenSec <= 0 {
		return chunks.ErrInvalidChunkLength
	}
	if c.PreSec < 0 || c.PostSec < 0 {
		return fmt.Errorf("padding must be >= 0")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be > 0")
	}
	if c.PollIntervalSec <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	return gemini.ValidateBaseURL(c.GeminiBaseURL, c.GeminiAllowedHosts)
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// adapters
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	inf := gemini.NewWithLogger(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiBaseURL,
		time.Duration(cfg.PollIntervalSec)*time.Second,
		time.Duration(cfg.PollTimeoutSec)*time.Second,
		log,
	)

	uc := usecase.New(usecase.Deps{
		Video:     v,
		Inference: inf,
		Logger:    log,
	})

	jobID := hash(cfg.InputPath)
	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	workDir := filepath.Join(baseCache, "runs", jobID)
	if err := os.RemoveAll(workDir); err != nil {
		return err
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(workDir)
	log.Info("prepared workspace", zap.String("dir", workDir))

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputPath, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}
	log.Info("output run dir", zap.String("dir", runOutDir))

	res, err := uc.Run(ctx, usecase.Input{
		InputPath:     cfg.InputPath,
		OutDir:        runOutDir,
		WorkDir:       workDir,
		ChunkLenSec:   cfg.ChunkLenSec,
		PreSec:        cfg.PreSec,
		PostSec:       cfg.PostSec,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  time.Duration(cfg.RetryBackoffSec) * time.Second,
	})
	if err != nil {
		return err
	}

	for _, g := range res.Report.Goals {
		log.Info("goal detected", zap.String("clock", g.Clock), zap.Int("sec", g.Sec))
	}

	b, err := json.MarshalIndent(res.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	reportPath := filepath.Join(runOutDir, "report.json")
	if err := os.WriteFile(reportPath, b, 0o644); err != nil {
		return err
	}
	log.Info("report written",
		zap.Int("goals", len(res.Report.Goals)),
		zap.Int("windows", len(res.Report.Windows)),
		zap.String("path", reportPath))
	return nil
}

func buildRunOutDir(outRoot, inputPath string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputPath, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Inference = (*gemini.Adapter)(nil)
