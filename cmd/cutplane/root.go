package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   *slog.Logger
)

// defaultTraceDir is shared by the run and runs commands so listings see
// the runs that were written.
const defaultTraceDir = "./data"

var rootCmd = &cobra.Command{
	Use:   "cutplane",
	Short: "Cutting-plane tightening for disjunctive programs",
	Long: `Cutplane tightens the big-M relaxation of a disjunctive program with
cutting planes separated against its convex-hull relaxation, then solves
the tightened model as a MIP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
