package display

import (
	"bytes"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"nfc-go/internal/config"
	"nfc-go/internal/model"
	"nfc-go/internal/nfc"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestAbbreviatePath(t *testing.T) {
	long := "/Users/someone/Documents/projects/2024/reports/quarterly/summary.pdf"

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "short path unchanged", input: "/tmp/a", maxLength: 60, want: "/tmp/a"},
		{name: "exact length unchanged", input: "abcdef", maxLength: 6, want: "abcdef"},
		{name: "middle replaced", input: "abcdefghij", maxLength: 9, want: "abc...hij"},
		{name: "even budget", input: "abcdefghij", maxLength: 8, want: "ab...ij"},
		{name: "tiny budget truncates", input: "abcdefghij", maxLength: 2, want: "ab"},
		{name: "negative budget", input: "abc", maxLength: -1, want: ""},
		{name: "counts runes", input: "가나다라마바사아자차", maxLength: 7, want: "가나...자차"},
		{name: "default width", input: long, maxLength: 60, want: long[:28] + "..." + long[len(long)-28:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbbreviatePath(tt.input, tt.maxLength)
			if got != tt.want {
				t.Errorf("AbbreviatePath(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
			if tt.maxLength >= 0 && len([]rune(got)) > tt.maxLength {
				t.Errorf("result %q longer than %d", got, tt.maxLength)
			}
		})
	}
}

func TestStatusWidth(t *testing.T) {
	if got := StatusWidth(80, nil); got != 80 {
		t.Errorf("StatusWidth(80, nil) = %d, want 80", got)
	}
	if got := StatusWidth(0, nil); got != config.DefaultMaxPathLength {
		t.Errorf("StatusWidth(0, nil) = %d, want %d", got, config.DefaultMaxPathLength)
	}
}

func TestStatusLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatusLine(&buf, 9)

	s.Status("short")
	s.Status("abcdefghij")

	want := "short\nabc...hij\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConfigureColor(t *testing.T) {
	defer func() { color.NoColor = true }()

	if err := ConfigureColor("always", nil); err != nil {
		t.Fatalf("ConfigureColor(always) error = %v", err)
	}
	if color.NoColor {
		t.Error("always: NoColor = true")
	}
	if err := ConfigureColor("never", nil); err != nil {
		t.Fatalf("ConfigureColor(never) error = %v", err)
	}
	if !color.NoColor {
		t.Error("never: NoColor = false")
	}
	if err := ConfigureColor("auto", nil); err != nil {
		t.Fatalf("ConfigureColor(auto) error = %v", err)
	}
	if !color.NoColor {
		t.Error("auto without a terminal: NoColor = false")
	}
	if err := ConfigureColor("loud", nil); err == nil {
		t.Error("ConfigureColor(loud) expected error")
	}
}

func TestRenderTree(t *testing.T) {
	rows := []nfc.Row{
		{ID: 0, Depth: 0, Kind: nfc.KindFolder, OriginalName: "root", NormalizedName: "root", RelativePath: "."},
		{ID: 1, Depth: 1, Kind: nfc.KindFolder, OriginalName: "Cafe\u0301", NormalizedName: "Caf\u00e9", RelativePath: "Cafe\u0301", IsCandidate: true, Checked: true},
		{ID: 2, Depth: 2, Kind: nfc.KindFile, OriginalName: "a\u0301.txt", NormalizedName: "\u00e1.txt", RelativePath: "Cafe\u0301/a\u0301.txt", IsCandidate: true},
	}

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		RenderTree(&buf, rows, false)
		want := "\u2610 root/\n" +
			"  \u2611 Cafe\u0301/  -> Caf\u00e9\n" +
			"    \u2610 a\u0301.txt  -> \u00e1.txt\n"
		if got := buf.String(); got != want {
			t.Errorf("RenderTree() =\n%q\nwant:\n%q", got, want)
		}
	})

	t.Run("numbered", func(t *testing.T) {
		var buf bytes.Buffer
		RenderTree(&buf, rows, true)
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3", len(lines))
		}
		if !strings.HasPrefix(lines[2], "   2     \u2610 ") {
			t.Errorf("line 2 = %q", lines[2])
		}
	})
}

func TestRenderProblems(t *testing.T) {
	var buf bytes.Buffer
	RenderProblems(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("no problems should print nothing, got %q", buf.String())
	}

	RenderProblems(&buf, []nfc.ScanProblem{{RelativePath: "locked", Err: fs.ErrPermission}})
	got := buf.String()
	if !strings.Contains(got, "Scan problems: 1") || !strings.Contains(got, "locked: permission denied") {
		t.Errorf("RenderProblems() = %q", got)
	}
}

func TestRenderReport(t *testing.T) {
	t.Run("all succeeded", func(t *testing.T) {
		report := &nfc.ConvertReport{
			Outcomes: []nfc.RenameOutcome{
				{RelativePath: ".", Skipped: true},
				{RelativePath: "a1", AttemptedNewName: "a1"},
			},
			Succeeded: 2,
		}
		var buf bytes.Buffer
		RenderReport(&buf, report)
		if got, want := buf.String(), "All selected items converted (1 renamed).\n"; got != want {
			t.Errorf("RenderReport() = %q, want %q", got, want)
		}
	})

	t.Run("lists failures", func(t *testing.T) {
		report := &nfc.ConvertReport{
			Outcomes: []nfc.RenameOutcome{
				{RelativePath: "x1", Err: &nfc.RenameError{Reason: nfc.ReasonTargetExists, Path: "x1"}},
				{RelativePath: "y1"},
				{RelativePath: "z1", Err: &nfc.RenameError{Reason: nfc.ReasonIOError, Path: "z1", Err: errors.New("read-only file system")}},
			},
			Succeeded: 1,
			Failed:    2,
		}
		var buf bytes.Buffer
		RenderReport(&buf, report)
		got := buf.String()
		for _, want := range []string{
			"2 of 3 selected items failed (1 renamed):",
			"\tx1: target already exists\n",
			"\tz1: I/O error: read-only file system\n",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("RenderReport() = %q, missing %q", got, want)
			}
		}
	})
}

func TestRenderPlan(t *testing.T) {
	report := &nfc.ConvertReport{
		Outcomes: []nfc.RenameOutcome{
			{RelativePath: ".", Skipped: true},
			{RelativePath: "a1", AttemptedNewName: "a1"},
			{RelativePath: "b1", Err: &nfc.RenameError{Reason: nfc.ReasonNotFound, Path: "b1"}},
		},
	}
	var buf bytes.Buffer
	RenderPlan(&buf, report)
	want := "would rename a1 -> a1\ncannot rename b1: no longer exists\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderPlan() = %q, want %q", got, want)
	}
}

func TestRenderHistory(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	var empty bytes.Buffer
	RenderHistory(&empty, nil, now)
	if !strings.Contains(empty.String(), "No conversions recorded.") {
		t.Errorf("empty history = %q", empty.String())
	}

	ops := []*model.Operation{
		{ID: 2, StartedAt: now.Add(-2 * time.Hour), Operation: "Convert", Parameters: "/data/music", Status: model.StatusPartial},
		{ID: 1, StartedAt: now.Add(-72 * time.Hour), Operation: "Convert", Parameters: "/data/docs", Status: model.StatusSuccess},
	}
	var buf bytes.Buffer
	RenderHistory(&buf, ops, now)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "2 hours ago") || !strings.Contains(lines[0], "partial") || !strings.HasSuffix(lines[0], "/data/music") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "3 days ago") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestRenderOperation(t *testing.T) {
	started := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	op := &model.Operation{
		ID:         7,
		StartedAt:  started,
		FinishedAt: sql.NullTime{Time: started.Add(time.Second), Valid: true},
		Operation:  "Convert",
		Parameters: "/data",
		Status:     model.StatusPartial,
	}
	renames := []*model.RenameRecord{
		{RelativePath: "a1", NormalizedName: "a1", Status: model.StatusSuccess},
		{RelativePath: "b1", NormalizedName: "e1", Status: "io_error", Detail: "permission denied"},
	}

	var buf bytes.Buffer
	RenderOperation(&buf, op, renames)
	got := buf.String()
	for _, want := range []string{
		"Operation 7: Convert\n",
		"Directory: /data\n",
		"Finished:  ",
		"Status:    partial\n",
		"\t[success] a1 -> a1\n",
		"\t[io_error] b1 -> e1 (permission denied)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderOperation() = %q, missing %q", got, want)
		}
	}
}
