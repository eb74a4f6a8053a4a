package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/score"
)

const descriptionWidth = 48

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// renderComplaint prints one complaint as a labelled block
func renderComplaint(w io.Writer, c model.Complaint, breakdown *score.Breakdown) {
	if c.ID > 0 {
		fmt.Fprintf(w, "Complaint #%d\n", c.ID)
	} else {
		fmt.Fprintf(w, "Complaint (not stored)\n")
	}
	fmt.Fprintf(w, "  Description:  %s\n", c.Description)
	fmt.Fprintf(w, "  Category:     %s\n", c.Category)
	fmt.Fprintf(w, "  Severity:     %s\n", c.Severity)
	fmt.Fprintf(w, "  Location:     %s\n", c.Location)
	fmt.Fprintf(w, "  Urgency:      %d/10\n", c.UrgencyScore)
	fmt.Fprintf(w, "  Date:         %s\n", c.CreatedAt.Format(model.DateLayout))
	fmt.Fprintf(w, "  Status:       %s\n", c.ResolutionStatus)

	if breakdown == nil {
		return
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Category weight:  %.2f (%s)\n", breakdown.CategoryWeight, breakdown.Category)
	fmt.Fprintf(w, "  Severity weight:  %.2f (%s%s)\n", breakdown.SeverityWeight, breakdown.Severity, keywordSuffix(breakdown.SeverityKeyword))
	fmt.Fprintf(w, "  Location weight:  %.2f%s\n", breakdown.LocationWeight, keywordSuffix(breakdown.LocationKeyword))
	fmt.Fprintf(w, "  %s\n", breakdown.String())
}

func keywordSuffix(keyword string) string {
	if keyword == "" {
		return ""
	}
	return fmt.Sprintf(", matched %q", keyword)
}

// renderTable prints complaints one per row
func renderTable(w io.Writer, complaints []model.Complaint) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURGENCY\tCATEGORY\tSEVERITY\tLOCATION\tDATE\tSTATUS\tDESCRIPTION")
	for _, c := range complaints {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.UrgencyScore,
			c.Category,
			c.Severity,
			c.Location,
			c.CreatedAt.Format(model.DateLayout),
			c.ResolutionStatus,
			truncate(c.Description, descriptionWidth))
	}
	return tw.Flush()
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}
