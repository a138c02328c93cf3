package display

import (
	"errors"
	"fmt"
	"io"

	"nfc-go/internal/nfc"
)

// RenderReport summarizes a conversion batch. A batch without failures is
// reported in one line; otherwise every failure is listed with its
// relative path and reason.
func RenderReport(w io.Writer, report *nfc.ConvertReport) {
	renamed := 0
	for _, o := range report.Outcomes {
		if o.Succeeded() && !o.Skipped {
			renamed++
		}
	}

	if report.Failed == 0 {
		successColor.Fprintf(w, "All selected items converted (%d renamed).\n", renamed)
		return
	}

	failureColor.Fprintf(w, "%d of %d selected items failed (%d renamed):\n", report.Failed, len(report.Outcomes), renamed)
	for _, o := range report.Failures() {
		failureColor.Fprintf(w, "\t%s: %s\n", o.RelativePath, failureText(o))
	}
}

// RenderPlan lists what a conversion would do, one line per outcome.
func RenderPlan(w io.Writer, report *nfc.ConvertReport) {
	for _, o := range report.Outcomes {
		switch {
		case o.Skipped:
			continue
		case o.Succeeded():
			fmt.Fprintf(w, "would rename %s -> %s\n", o.RelativePath, targetColor.Sprint(o.AttemptedNewName))
		default:
			failureColor.Fprintf(w, "cannot rename %s: %s\n", o.RelativePath, failureText(o))
		}
	}
}

func failureText(o nfc.RenameOutcome) string {
	var rerr *nfc.RenameError
	if !errors.As(o.Err, &rerr) {
		return o.Err.Error()
	}
	switch rerr.Reason {
	case nfc.ReasonTargetExists:
		return "target already exists"
	case nfc.ReasonNotFound:
		return "no longer exists"
	default:
		return "I/O error: " + rerr.Detail()
	}
}
