package display

import (
	"fmt"
	"io"
)

// StatusLine prints status messages one per line, abbreviated to a fixed width.
// It satisfies nfc.StatusReporter.
type StatusLine struct {
	w     io.Writer
	width int
}

// NewStatusLine creates a StatusLine writing to w.
func NewStatusLine(w io.Writer, width int) *StatusLine {
	return &StatusLine{w: w, width: width}
}

func (s *StatusLine) Status(msg string) {
	fmt.Fprintln(s.w, dimColor.Sprint(AbbreviatePath(msg, s.width)))
}
