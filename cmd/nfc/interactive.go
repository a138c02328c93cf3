package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"nfc-go/internal/display"
	"nfc-go/internal/nfc"
)

type action int

const (
	actionConvert action = iota
	actionQuit
)

const interactiveHelp = `Enter row numbers to toggle them (e.g. "1 4 7-9"),
"a" to check all, "n" to check none, "c" to convert the checked entries
or "q" to quit.`

// promptSelection shows the tree and reads commands from in until the user
// asks to convert or quit. End of input counts as quit.
func promptSelection(in *bufio.Reader, out io.Writer, tree *nfc.SelectionTree) (action, error) {
	fmt.Fprintln(out, interactiveHelp)
	for {
		fmt.Fprintln(out)
		display.RenderTree(out, tree.Rows(), true)
		fmt.Fprintf(out, "%d of %d checked> ", tree.CheckedCount(), tree.Len())

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return actionQuit, fmt.Errorf("reading input: %w", err)
		}
		eof := err != nil

		switch cmd := strings.TrimSpace(line); cmd {
		case "q":
			return actionQuit, nil
		case "c":
			if tree.CheckedCount() == 0 {
				fmt.Fprintln(out, "Nothing is checked.")
				continue
			}
			return actionConvert, nil
		case "a":
			tree.SetAll(true)
		case "n":
			tree.SetAll(false)
		case "?", "h":
			fmt.Fprintln(out, interactiveHelp)
		case "":
		default:
			ids, perr := parseRowIDs(cmd, tree.Len())
			if perr != nil {
				fmt.Fprintln(out, perr)
				break
			}
			for _, id := range ids {
				// ids are range-checked by parseRowIDs
				_ = tree.Toggle(id)
			}
		}

		if eof {
			return actionQuit, nil
		}
	}
}

// parseRowIDs parses space or comma separated row numbers and ranges
// ("7-9") and checks them against the number of rows.
func parseRowIDs(s string, rows int) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	var ids []int
	for _, f := range fields {
		lo, hi := f, f
		if i := strings.Index(f, "-"); i > 0 {
			lo, hi = f[:i], f[i+1:]
		}
		from, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("not a row number: %q", f)
		}
		to, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("not a row number: %q", f)
		}
		if from > to {
			from, to = to, from
		}
		if from < 0 || to >= rows {
			return nil, fmt.Errorf("row %q out of range 0-%d", f, rows-1)
		}
		for id := from; id <= to; id++ {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// selectPath checks the node at rel and everything below it. rel is
// relative to the scanned directory; it may be typed in either
// normalization form.
func selectPath(tree *nfc.SelectionTree, rel string) error {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if id, ok := tree.Find(rel); ok {
		return tree.SetChecked(id, true)
	}

	want := nfc.Normalize(rel)
	for _, row := range tree.Rows() {
		if nfc.Normalize(row.RelativePath) == want {
			return tree.SetChecked(row.ID, true)
		}
	}
	return fmt.Errorf("no entry to rename at %q", rel)
}
