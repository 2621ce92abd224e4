package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/disjunct/cutplane/internal/engine"
	"github.com/disjunct/cutplane/internal/model"
	"github.com/disjunct/cutplane/internal/store"
)

var (
	modelPath  string
	configPath string
	traceDir   string
	epsilon    float64
	cutTol     float64
	maxIters   int
	retries    int
	bigM       float64
	contSolver string
	discSolver string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cutting-plane loop on a disjunctive program",
	Long: `Loads a disjunctive program from a JSON file, tightens its big-M
relaxation with cuts separated against the convex-hull relaxation, solves
the tightened model as a MIP, and prints the result.`,
	RunE: runCuttingLoop,
}

func init() {
	runCmd.Flags().StringVar(&modelPath, "model", "", "Disjunctive program JSON file (required)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML config file")
	runCmd.Flags().StringVar(&traceDir, "trace-dir", defaultTraceDir, "Directory for run traces (empty disables persistence)")
	runCmd.Flags().Float64Var(&epsilon, "epsilon", 0.001, "Minimum objective improvement per iteration")
	runCmd.Flags().Float64Var(&cutTol, "cut-tol", 1e-8, "Squared-distance tolerance for degenerate cuts")
	runCmd.Flags().IntVar(&maxIters, "max-iters", 50, "Iteration cap (0 = unlimited)")
	runCmd.Flags().IntVar(&retries, "retries", 2, "Retries for numerically failed solves")
	runCmd.Flags().Float64Var(&bigM, "bigm", 1e6, "Big-M relaxation constant")
	runCmd.Flags().StringVar(&contSolver, "solver", "simplex", "Continuous solver name")
	runCmd.Flags().StringVar(&discSolver, "mip-solver", "branchbound", "Discrete solver name")

	runCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(runCmd)
}

// loadConfig layers defaults, an optional YAML file, and explicit flags,
// in that order of precedence (flags win).
func loadConfig(cmd *cobra.Command) (engine.Config, error) {
	def := engine.DefaultConfig()
	v := viper.New()
	v.SetDefault("continuousSolver", def.ContinuousSolver)
	v.SetDefault("discreteSolver", def.DiscreteSolver)
	v.SetDefault("epsilon", def.Epsilon)
	v.SetDefault("cutTolerance", def.CutTolerance)
	v.SetDefault("maxIterations", def.MaxIterations)
	v.SetDefault("solveRetries", def.SolveRetries)
	v.SetDefault("bigM", def.BigM)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return engine.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		slog.Info("Loaded config file", "path", v.ConfigFileUsed())
	}

	flagOverrides := map[string]any{
		"solver":     contSolver,
		"mip-solver": discSolver,
		"epsilon":    epsilon,
		"cut-tol":    cutTol,
		"max-iters":  maxIters,
		"retries":    retries,
		"bigm":       bigM,
	}
	flagKeys := map[string]string{
		"solver":     "continuousSolver",
		"mip-solver": "discreteSolver",
		"epsilon":    "epsilon",
		"cut-tol":    "cutTolerance",
		"max-iters":  "maxIterations",
		"retries":    "solveRetries",
		"bigm":       "bigM",
	}
	for flag, key := range flagKeys {
		if cmd.Flags().Changed(flag) {
			v.Set(key, flagOverrides[flag])
		}
	}

	return engine.Config{
		ContinuousSolver: v.GetString("continuousSolver"),
		DiscreteSolver:   v.GetString("discreteSolver"),
		Epsilon:          v.GetFloat64("epsilon"),
		CutTolerance:     v.GetFloat64("cutTolerance"),
		MaxIterations:    v.GetInt("maxIterations"),
		SolveRetries:     v.GetInt("solveRetries"),
		BigM:             v.GetFloat64("bigM"),
	}, nil
}

func runCuttingLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	prog, err := model.LoadProgram(modelPath)
	if err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	slog.Info("Loaded program",
		"name", prog.Name,
		"variables", len(prog.Variables),
		"disjunctions", len(prog.Disjunctions),
	)

	driver, err := engine.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	result, runErr := driver.Run(context.Background(), prog)
	elapsed := time.Since(start)

	if result != nil && traceDir != "" {
		if err := persistRun(prog.Name, cfg, result, start); err != nil {
			slog.Warn("Failed to persist run trace", "error", err)
		}
	}

	if runErr != nil {
		var sf *engine.SolveFailure
		if errors.As(runErr, &sf) && sf.Phase == engine.PhaseFinal && result != nil {
			// The loop finished; only the discrete solve failed. The cuts
			// are still worth reporting.
			slog.Error("Final discrete solve failed", "error", sf, "cuts", len(result.Cuts))
		}
		return runErr
	}

	slog.Info("Run complete",
		"elapsed", elapsed,
		"status", result.Status.String(),
		"iterations", result.Iterations,
		"cuts", len(result.Cuts),
		"relaxed_objective", result.RelaxedObjective,
		"final_objective", result.FinalObjective,
		"gap", result.Gap,
	)

	fmt.Printf("%s: %s after %d iteration(s), %d cut(s)\n",
		prog.Name, result.Status, result.Iterations, len(result.Cuts))
	fmt.Printf("objective: %.6g (relaxation bound %.6g, gap %.3g)\n",
		result.FinalObjective, result.RelaxedObjective, result.Gap)
	for _, v := range prog.Variables {
		if val, ok := result.FinalValues[v.Name]; ok {
			fmt.Printf("  %s = %.6g\n", v.Name, val)
		}
	}
	return nil
}

// persistRun writes the run's summary and iteration trace to the store.
func persistRun(program string, cfg engine.Config, result *engine.Result, start time.Time) error {
	st, err := store.NewFSStore(traceDir)
	if err != nil {
		return err
	}
	runID := store.NewRunID()

	tw, err := store.NewTraceWriter(st.BaseDir(), runID)
	if err != nil {
		return err
	}
	defer tw.Close()
	for _, rec := range result.History {
		entry := store.TraceEntry{
			Iteration:  rec.Iteration,
			Objective:  rec.Objective,
			Delta:      rec.Delta,
			DistanceSq: rec.DistanceSq,
			CutAdded:   rec.CutAdded,
			Timestamp:  time.Now(),
		}
		if err := tw.Write(entry); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := &store.RunSummary{
		RunID:            runID,
		Program:          program,
		Status:           result.Status.String(),
		Iterations:       result.Iterations,
		Cuts:             len(result.Cuts),
		RelaxedObjective: result.RelaxedObjective,
		FinalObjective:   result.FinalObjective,
		Gap:              result.Gap,
		FinalValues:      result.FinalValues,
		StartedAt:        start,
		FinishedAt:       time.Now(),
		Config: store.RunConfig{
			ContinuousSolver: cfg.ContinuousSolver,
			DiscreteSolver:   cfg.DiscreteSolver,
			Epsilon:          cfg.Epsilon,
			CutTolerance:     cfg.CutTolerance,
			MaxIterations:    cfg.MaxIterations,
			BigM:             cfg.BigM,
		},
	}
	if err := st.SaveSummary(summary); err != nil {
		return err
	}
	slog.Info("Run persisted", "runID", runID, "dir", st.BaseDir())
	return nil
}
