package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/zeroshot"
)

var classifyJSON bool

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show how the classifier sees a text",
	Long: `Normalize a text and print the candidate categories ranked by the
configured provider. Nothing is stored.

Examples:
  civictriage classify "pipes are leaking near the school"
  civictriage classify --provider ollama --model llama3.2 "stray dogs"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the ranking as JSON")
}

// classifyOutput is the --json shape of the classify command
type classifyOutput struct {
	Provider   string                `json:"provider"`
	Normalized string                `json:"normalized"`
	Labels     []zeroshot.LabelScore `json:"labels"`
	Category   model.Category        `json:"category"`
	Confidence float64               `json:"confidence"`
	Cached     bool                  `json:"cached"`
}

func runClassify(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newClassifierApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if cfg.Output.Verbose && !a.provider.IsAvailable(ctx) {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Provider %s is not reachable\n", a.provider.Name())
	}

	ranking, err := a.classifier.Rank(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	category, confidence, _ := ranking.Category()

	out := cmd.OutOrStdout()
	if classifyJSON || cfg.Output.JSON {
		labels := ranking.Labels
		if labels == nil {
			labels = []zeroshot.LabelScore{}
		}
		return writeJSON(out, classifyOutput{
			Provider:   a.provider.Name(),
			Normalized: ranking.Normalized,
			Labels:     labels,
			Category:   category,
			Confidence: confidence,
			Cached:     ranking.Cached,
		})
	}

	fmt.Fprintf(out, "Provider:    %s\n", a.provider.Name())
	fmt.Fprintf(out, "Normalized:  %s\n", ranking.Normalized)
	if ranking.Cached {
		fmt.Fprintf(out, "Cached:      yes\n")
	}
	fmt.Fprintln(out)
	if len(ranking.Labels) == 0 {
		fmt.Fprintln(out, "  (no label matched)")
	}
	for i, ls := range ranking.Labels {
		fmt.Fprintf(out, "  %d. %-16s %.3f\n", i+1, ls.Label, ls.Score)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Category:    %s (%.2f)\n", category, confidence)
	if cfg.Output.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "  Cache:        %s\n", a.cacheSummary())
	}
	return nil
}
