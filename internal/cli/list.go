package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/civictriage/internal/model"
)

var (
	listJSON  bool
	listLimit int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored complaints, most urgent first",
	Long: `List every stored complaint sorted by urgency score, highest first.
Complaints with equal scores keep their storage order.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "print complaints as JSON")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "show at most N complaints (0 = all)")
}

func runList(cmd *cobra.Command, args []string) (err error) {
	if listLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	complaints, err := a.pipeline.ListAll(ctx)
	if err != nil {
		return err
	}
	if listLimit > 0 && len(complaints) > listLimit {
		complaints = complaints[:listLimit]
	}

	out := cmd.OutOrStdout()
	if listJSON || cfg.Output.JSON {
		if complaints == nil {
			complaints = []model.Complaint{}
		}
		return writeJSON(out, complaints)
	}

	if len(complaints) == 0 {
		fmt.Fprintln(out, "No complaints stored.")
		return nil
	}
	return renderTable(out, complaints)
}
