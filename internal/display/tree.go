package display

import (
	"fmt"
	"io"
	"strings"

	"nfc-go/internal/nfc"
)

// Checkbox glyphs shown in front of each row.
const (
	Unchecked = "☐"
	Checked   = "☑"
)

// RenderTree writes one line per row: an optional row number, indentation
// by depth, the checkbox, the current name and, for entries that need
// renaming, the normalized name.
func RenderTree(w io.Writer, rows []nfc.Row, numbered bool) {
	for _, row := range rows {
		var b strings.Builder
		if numbered {
			fmt.Fprintf(&b, "%4d ", row.ID)
		}
		b.WriteString(strings.Repeat("  ", row.Depth))
		if row.Checked {
			b.WriteString(Checked)
		} else {
			b.WriteString(Unchecked)
		}
		b.WriteByte(' ')

		name := row.OriginalName
		if row.Kind == nfc.KindFolder {
			name += "/"
		}
		if row.IsCandidate {
			b.WriteString(name)
			b.WriteString("  -> ")
			b.WriteString(targetColor.Sprint(row.NormalizedName))
		} else {
			b.WriteString(dimColor.Sprint(name))
		}
		fmt.Fprintln(w, b.String())
	}
}

// RenderProblems lists directories that could not be read during a scan.
func RenderProblems(w io.Writer, problems []nfc.ScanProblem) {
	if len(problems) == 0 {
		return
	}
	warningColor.Fprintf(w, "Scan problems: %d\n", len(problems))
	for _, p := range problems {
		warningColor.Fprintf(w, "\t%s: %v\n", p.RelativePath, p.Err)
	}
}
