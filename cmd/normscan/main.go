package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"normscan/internal/audit"
	"normscan/internal/config"
	"normscan/internal/pipeline"
	"normscan/internal/storage"
	"normscan/internal/verify"
)

// Exit codes form the operator contract: automation must be able to tell
// "needs review" (1) from "broken" (2).
const (
	exitOK           = 0
	exitWarnings     = 1
	exitInconsistent = 2
	exitFatal        = 3
)

var (
	rootCmd = &cobra.Command{
		Use:   "normscan",
		Short: "Rule extraction and multi-artifact synchronization engine",
	}

	configPath string
	dbPath     string
	debugMode  bool

	corpusDir string
	mode      string
	outputDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "normscan.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "normscan.db", "Path to the run-history database (SQLite)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	scanCmd.Flags().StringVar(&corpusDir, "corpus", ".", "Corpus root directory")
	scanCmd.Flags().StringVar(&mode, "mode", "", "Matcher mode: explicit or comprehensive")
	scanCmd.Flags().StringVarP(&outputDir, "output", "o", "out", "Artifact output directory")

	verifyCmd.Flags().StringVarP(&outputDir, "output", "o", "out", "Artifact directory to verify")

	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselinePromoteCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(baselineCmd)
}

func newLogger() *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if debugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the corpus, emit the five artifacts and the run report",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if mode != "" {
			cfg.Matchers.Mode = mode
		}

		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("open run database: %w", err)
		}
		defer store.Close()

		out, runErr := pipeline.Run(context.Background(), pipeline.Options{
			CorpusDir: corpusDir,
			Cfg:       cfg,
			Log:       log,
			Store:     store,
		})
		if out == nil {
			// Unreadable corpus: nothing to report on.
			return runErr
		}

		// The report and scorecard are written even on partial failure so
		// the operator always has something to inspect.
		if err := writeOutputs(out); err != nil {
			return err
		}
		fmt.Print(audit.Scorecard(out.Report))

		switch {
		case errors.Is(runErr, verify.ErrInconsistent):
			os.Exit(exitInconsistent)
		case runErr != nil:
			fmt.Fprintln(os.Stderr, runErr)
			os.Exit(exitFatal)
		}
		os.Exit(out.Report.ExitCode())
		return nil
	},
}

// writeOutputs persists the in-memory artifacts and report. The engine
// itself only produced byte buffers; file I/O happens here at the boundary.
func writeOutputs(out *pipeline.Outcome) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, a := range out.Artifacts {
		if err := os.WriteFile(filepath.Join(outputDir, a.Name), a.Data, 0o644); err != nil {
			return fmt.Errorf("write artifact %s: %w", a.Name, err)
		}
	}
	reportJSON, err := out.Report.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, audit.ReportName), reportJSON, 0o644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check already-emitted artifacts for cross-artifact consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := verify.CheckDir(outputDir)
		if err != nil {
			return err
		}
		if !res.Passed {
			fmt.Fprintln(os.Stderr, res.Err())
			os.Exit(exitInconsistent)
		}
		fmt.Printf("consistent: %d rules across all artifacts\n", res.RuleCount)
		return nil
	},
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect or promote the last-known-good fingerprint",
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the promoted baseline and recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		if base, ok, err := store.Baseline(ctx); err != nil {
			return err
		} else if ok {
			fmt.Printf("baseline: run %s fingerprint %s promoted %s (%d rules)\n",
				base.RunID, base.Fingerprint, base.PromotedAt, len(base.Rules))
		} else {
			fmt.Println("baseline: none promoted")
		}

		runs, err := store.ListRuns(ctx, 10)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("run %s  %s  %d rules  %s\n", r.RunID, r.Fingerprint[:12], r.RuleCount, r.CreatedAt)
		}
		return nil
	},
}

var baselinePromoteCmd = &cobra.Command{
	Use:   "promote <run-id>",
	Short: "Promote a stored run to last-known-good",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.PromoteBaseline(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("promoted run %s to baseline\n", args[0])
		return nil
	},
}
