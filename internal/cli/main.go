package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "goalcut <input>",
		Short:        "Cut a goal-highlight reel from a match recording",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("config", "", "Config file path")
	root.Flags().Bool("verbose", false, "Human-readable debug logging")

	// Hidden tuning flag (internal)
	root.Flags().Int("chunk-length", 0, "Chunk length seconds override")
	_ = root.Flags().MarkHidden("chunk-length")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
