package display

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"nfc-go/internal/model"
)

// RenderHistory writes one line per operation: id, relative start time,
// status and the scanned directory.
func RenderHistory(w io.Writer, ops []*model.Operation, now time.Time) {
	if len(ops) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}
	for _, op := range ops {
		fmt.Fprintf(w, "%5d  %-14s  %s  %s\n",
			op.ID,
			humanize.RelTime(op.StartedAt, now, "ago", "from now"),
			statusColor(op.Status).Sprintf("%-7s", op.Status),
			op.Parameters)
	}
}

// RenderOperation writes the details of one operation and its renames.
func RenderOperation(w io.Writer, op *model.Operation, renames []*model.RenameRecord) {
	fmt.Fprintf(w, "Operation %d: %s\n", op.ID, op.Operation)
	fmt.Fprintf(w, "Directory: %s\n", op.Parameters)
	fmt.Fprintf(w, "Started:   %s\n", op.StartedAt.Local().Format(time.RFC3339))
	if op.FinishedAt.Valid {
		fmt.Fprintf(w, "Finished:  %s\n", op.FinishedAt.Time.Local().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Status:    %s\n", statusColor(op.Status).Sprint(op.Status))

	if len(renames) == 0 {
		return
	}
	fmt.Fprintln(w, "Renames:")
	for _, r := range renames {
		line := fmt.Sprintf("\t[%s] %s -> %s", r.Status, r.RelativePath, r.NormalizedName)
		if r.Detail != "" {
			line += " (" + r.Detail + ")"
		}
		fmt.Fprintln(w, statusColor(r.Status).Sprint(line))
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case model.StatusSuccess:
		return successColor
	case model.StatusPartial, model.StatusSkipped, model.StatusRunning:
		return warningColor
	default:
		return failureColor
	}
}
