package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/toolfinder/backend/internal/domain"
)

// Printer renders recommendations for a terminal
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// NewPrinter creates a printer. With useColors set, ANSI colors are written
// even when the writers are not terminals.
func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Recommendations prints each result as a short block, or the response
// message when nothing matched
func (p *Printer) Recommendations(resp *domain.RecommendationResponse) {
	if len(resp.Results) == 0 {
		msg := resp.Message
		if msg == "" {
			msg = "No products matched your criteria."
		}
		p.style(color.FgYellow).Fprintln(p.out, msg)
		return
	}

	for i, r := range resp.Results {
		if i > 0 {
			fmt.Fprintln(p.out)
		}

		title := fmt.Sprintf("%d. %s", r.Rank, r.Name)
		if r.Justification.Medal != "" {
			title = r.Justification.Medal + " " + title
		}
		p.style(color.Bold).Fprint(p.out, title)
		p.style(color.FgGreen).Fprintf(p.out, "  %d/100\n", r.Justification.Score)

		if r.Justification.Highlight != "" {
			p.style(color.Faint).Fprintf(p.out, "   %s\n", r.Justification.Highlight)
		}
		if r.URL != "" {
			p.style(color.FgCyan).Fprintf(p.out, "   %s\n", r.URL)
		}
		for _, reason := range r.Justification.Reasons {
			fmt.Fprintf(p.out, "   - %s\n", reason)
		}
	}
}

// FormatError prints a structured error message to the error writer
func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		p.style(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
	} else {
		fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
	}
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		p.style(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	}
}
