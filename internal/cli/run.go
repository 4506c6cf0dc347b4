package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/goalcut/internal/config"
	"github.com/forPelevin/goalcut/internal/logger"
	"github.com/forPelevin/goalcut/internal/pipeline"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	chunkLenFlag, _ := cmd.Flags().GetInt("chunk-length")

	var (
		conf *config.Configuration
		err  error
	)
	if configFile != "" {
		conf, err = config.NewFromFile(configFile)
		if err != nil {
			return err
		}
	} else {
		conf = config.New()
	}

	if conf.GetGeminiAPIKey() == "" {
		return errors.New("GEMINI_API_KEY is required (set it in .env)")
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	var log *zap.Logger
	if verbose {
		log, err = logger.NewDevelopment()
		if err != nil {
			return err
		}
	} else {
		log = logger.New()
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	chunkLenSec := conf.GetChunkLengthSeconds()
	if chunkLenFlag > 0 {
		chunkLenSec = chunkLenFlag
	}

	cfg := pipeline.Config{
		InputPath: absIn,
		OutDir:    outDir,

		ChunkLenSec:     chunkLenSec,
		PreSec:          conf.GetPrePaddingSeconds(),
		PostSec:         conf.GetPostPaddingSeconds(),
		RetryAttempts:   conf.GetRetryAttempts(),
		RetryBackoffSec: conf.GetRetryBackoffSeconds(),
		PollIntervalSec: conf.GetPollIntervalSeconds(),
		PollTimeoutSec:  conf.GetPollTimeoutSeconds(),

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		GeminiAPIKey:       conf.GetGeminiAPIKey(),
		GeminiModel:        conf.GetGeminiModel(),
		GeminiBaseURL:      conf.GetGeminiBaseURL(),
		GeminiAllowedHosts: conf.GetGeminiAllowedHosts(),

		Logger: log,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}
