package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/score"
)

var (
	submitLocation string
	submitExplain  bool
	submitJSON     bool
	submitDryRun   bool
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <description>",
	Short: "Triage and store one complaint",
	Long: `Classify, locate and score a complaint, then store it with the next id.

The description may be given as one quoted argument or as several words.
--location replaces whatever location the description mentions.

Examples:
  civictriage submit "Water leak near the hospital"
  civictriage submit "Street light broken" --location "Ward 12, MG Road"
  civictriage submit "Garbage not collected" --explain --json`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&submitLocation, "location", "l", "", "location override")
	submitCmd.Flags().BoolVar(&submitExplain, "explain", false, "show how the urgency score was computed")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "print the complaint as JSON")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "triage without storing")
}

// submitOutput is the --json shape when --explain is set
type submitOutput struct {
	Complaint model.Complaint  `json:"complaint"`
	Explain   *score.Breakdown `json:"explain,omitempty"`
}

func runSubmit(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if submitDryRun {
		cfg.Storage.Driver = "memory"
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

	description := strings.Join(args, " ")

	var complaint *model.Complaint
	if submitDryRun {
		complaint, err = a.pipeline.Triage(ctx, description, submitLocation)
	} else {
		complaint, err = a.pipeline.Submit(ctx, description, submitLocation)
	}
	if err != nil {
		return err
	}

	var breakdown *score.Breakdown
	if submitExplain {
		b := a.pipeline.Explain(*complaint)
		breakdown = &b
	}

	out := cmd.OutOrStdout()
	if submitJSON || cfg.Output.JSON {
		if breakdown == nil {
			return writeJSON(out, complaint)
		}
		return writeJSON(out, submitOutput{Complaint: *complaint, Explain: breakdown})
	}

	renderComplaint(out, *complaint, breakdown)
	if !submitDryRun {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Stored complaint #%d\n", complaint.ID)
	}
	return nil
}
