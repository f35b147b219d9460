package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/inmueble/internal/metrics"
	"github.com/ppiankov/inmueble/internal/pipeline"
)

var runTimeout time.Duration

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <corpus.json>",
	Short: "Process a scraped corpus into valid and excluded partitions",
	Long: `Run processes every listing of a corpus file:
- Load the corpus (a JSON array or an object keyed by listing id)
- Extract typed fields with ordered patterns
- Ask the inference fallback for eligible fields still missing (--fallback)
- Score completeness and suspicion, then classify
- Write valid.json, excluded.json, missing_index.json and summary.json

Example:
  inmueble run corpus.json
  inmueble run corpus.json --workers 16 --output-dir ./out
  inmueble run corpus.json --fallback --cache-backend sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("workers", 0, "number of concurrent workers (default: number of CPUs)")
	runCmd.Flags().String("output-dir", "", "output directory (default: ./inmueble-output)")
	runCmd.Flags().Bool("fallback", false, "enable the inference fallback for unresolved fields")
	runCmd.Flags().String("cache-backend", "", "fallback cache backend (disk, sqlite, memory)")
	runCmd.Flags().String("metrics", "", "fallback metrics sink (csv, sqlite, memory, none)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "total timeout for the batch (0 = none)")

	_ = viper.BindPFlag("concurrency.workers", runCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("output.dir", runCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("fallback.enabled", runCmd.Flags().Lookup("fallback"))
	_ = viper.BindPFlag("cache.backend", runCmd.Flags().Lookup("cache-backend"))
	_ = viper.BindPFlag("metrics.sink", runCmd.Flags().Lookup("metrics"))
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Loading failures abort before any record is processed
	records, err := pipeline.LoadFile(file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	runID := uuid.NewString()

	sess, err := openSession(cfg, runID)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Inmueble Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Records:      %d\n", len(records))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	if sess.resolver != nil {
		fmt.Fprintf(os.Stderr, "  Fallback:     %d tier(s), cache %s\n", len(cfg.Fallback.Tiers), cfg.Cache.Backend)
	} else {
		fmt.Fprintf(os.Stderr, "  Fallback:     disabled\n")
	}
	fmt.Fprintf(os.Stderr, "\n")

	start := time.Now()
	batch := sess.newPipeline(cfg).Run(ctx, runID, records)
	elapsed := time.Since(start)
	if err := ctx.Err(); err != nil {
		zap.L().Warn("run cut short, writing classified batch", zap.Error(err))
	}

	out, err := pipeline.Write(cfg.Output.Dir, batch)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	zap.L().Info("run complete",
		zap.String("run_id", runID),
		zap.Int("records", len(records)),
		zap.Duration("duration", elapsed))

	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete (%s)\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	pipeline.Summarize(batch).Print(os.Stderr)

	if rec, ok := sess.recorder.(*metrics.SQLiteRecorder); ok {
		if s, err := rec.Summarize(runID); err == nil && s.Calls > 0 {
			fmt.Fprintf(os.Stderr, "\nFallback calls: %d (%d failed, %d tokens, %s)\n",
				s.Calls, s.Failures, s.Tokens, s.Duration.Round(time.Millisecond))
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Valid:     %s\n", out.Valid)
	fmt.Fprintf(os.Stderr, "  Excluded:  %s\n", out.Excluded)
	fmt.Fprintf(os.Stderr, "  Missing:   %s\n", out.Missing)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
