package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchRate    float64
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Submit many complaints from a file in parallel",
	Long: `Batch submits complaints concurrently:
- Read complaints from the input file (one per line)
- An optional location follows the description after a TAB
- Blank lines and lines starting with # are skipped
- Repeated lines are submitted once

Example:
  civictriage batch complaints.txt
  civictriage batch complaints.txt --concurrency 8
  civictriage batch complaints.txt --rate 2 --timeout 5m --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "maximum submissions per second (0 = unlimited)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print stored complaints as JSON")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Civictriage Batch Processing\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(stderr, "  Store:        %s\n", cfg.Storage.Driver)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(stderr, "\n")

	items, err := worker.ReadItemsFromFile(file)
	if err != nil {
		return fmt.Errorf("read complaints: %w", err)
	}
	fmt.Fprintf(stderr, "✓ Loaded %d complaints\n\n", len(items))

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	processor := worker.NewBatchProcessor(a.pipeline, workers, batchRate, cfg.Concurrency.BurstSize)
	processor.OnResult(func(r *worker.SubmitResult) {
		if r.Error != nil {
			fmt.Fprintf(stderr, "✗ line %d: %v\n", r.Item.Line, r.Error)
			return
		}
		fmt.Fprintf(stderr, "✓ #%d %s (urgency %d/10)\n", r.Complaint.ID, r.Complaint.Category, r.Complaint.UrgencyScore)
	})

	results := processor.ProcessItems(ctx, items)

	stored := make([]model.Complaint, 0, len(results))
	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			continue
		}
		stored = append(stored, *r.Complaint)
	}
	// Items never handed to a worker before the deadline
	skipped := len(items) - len(results)

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d complaints\n", len(items))
	fmt.Fprintf(stderr, "  Stored:    %d\n", len(stored))
	fmt.Fprintf(stderr, "  Failures:  %d\n", failures)
	if skipped > 0 {
		fmt.Fprintf(stderr, "  Skipped:   %d\n", skipped)
	}
	fmt.Fprintf(stderr, "\n")

	if batchJSON || cfg.Output.JSON {
		if err := writeJSON(cmd.OutOrStdout(), stored); err != nil {
			return err
		}
	}

	if failures+skipped > 0 {
		return fmt.Errorf("%d of %d complaints were not stored", failures+skipped, len(items))
	}
	return nil
}
