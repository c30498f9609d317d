package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It is meant for humans at a terminal; use json for machines.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var parts []string

	algorithm := r.Algorithm
	if algorithm == "" {
		algorithm = "md5"
	}
	parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Algorithm:"), ValueStyle.Render(algorithm)))

	hashed := fmt.Sprintf("%d files (%s) in %s",
		r.Stats.FilesHashed, humanize.Bytes(uint64(r.Stats.BytesHashed)), formatDuration(r.Stats.Duration))
	parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Hashed:"), ValueStyle.Render(hashed)))

	lines := []string{strings.Join(parts, "  ")}
	if r.DryRun {
		lines = append(lines, WarningStyle.Bold(true).Render("Dry run: no links were written"))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable builds the ORIGINAL -> LINK table.
func (f *PrettyFormatter) formatTable(r *Result) string {
	entries := r.Entries()
	if len(entries) == 0 {
		return MutedStyle.Render("  No files matched") + "\n"
	}

	width := len("ORIGINAL")
	for _, e := range entries {
		if len(e.Original) > width {
			width = len(e.Original)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s\n",
		TableHeaderStyle.Render(padRight("ORIGINAL", width)), TableHeaderStyle.Render("LINK")))

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			PathStyle.Render(padRight(e.Original, width)), LinkStyle.Render(e.Link)))
	}

	return sb.String()
}

// formatFooter builds the footer box with link counts.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Created:"), SuccessStyle.Render(fmt.Sprintf("%d", r.Stats.LinksCreated))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Unchanged:"), ValueStyle.Render(fmt.Sprintf("%d", r.Stats.LinksUnchanged))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Skipped symlinks:"), ValueStyle.Render(fmt.Sprintf("%d", r.Stats.SymlinksSkipped))),
	}
	if r.Stats.OtherSkipped > 0 {
		parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Skipped other:"), ValueStyle.Render(fmt.Sprintf("%d", r.Stats.OtherSkipped))))
	}
	if r.Stats.FilesExcluded > 0 {
		parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Excluded:"), ValueStyle.Render(fmt.Sprintf("%d", r.Stats.FilesExcluded))))
	}
	parts = append(parts, MutedStyle.Render("Use -o json for the manifest"))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	return d.Round(time.Second).String()
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
