package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nfc-go/internal/config"
	"nfc-go/internal/model"
	"nfc-go/internal/nfc"
)

const (
	cafeNFD   = "Cafe\u0301"
	cafeNFC   = "Caf\u00e9"
	resumeNFD = "re\u0301sume\u0301.txt"
	resumeNFC = "r\u00e9sum\u00e9.txt"
)

func newTestApp(t *testing.T, operation string, status nfc.StatusReporter) *NFCApp {
	t.Helper()
	cfg := config.NewEphemeralConfig(t.TempDir())
	a, err := newNFCApp(cfg, operation, status, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newNFCApp() error = %v", err)
	}
	return a
}

// makeTree creates a decomposed folder holding a decomposed file, next to an ASCII file.
func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, cafeNFD), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, cafeNFD, resumeNFD), []byte("cv"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "plain.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestNFCApp_ScanAndConvert(t *testing.T) {
	root := makeTree(t)

	var messages []string
	a := newTestApp(t, "Convert", nfc.StatusFunc(func(msg string) { messages = append(messages, msg) }))
	defer a.Close()

	result, err := a.Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got := result.CandidateCount(); got != 2 {
		t.Fatalf("CandidateCount() = %d, want 2", got)
	}
	if len(messages) != 2 || !strings.HasPrefix(messages[0], "Scanning ") {
		t.Errorf("status messages = %q", messages)
	}

	tree := nfc.NewSelectionTree(result.Root)
	tree.SetAll(true)

	report, err := a.Convert(root, tree)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if report.Failed != 0 {
		t.Errorf("Failed = %d, want 0; failures = %+v", report.Failed, report.Failures())
	}

	if _, err := os.Stat(filepath.Join(root, cafeNFC, resumeNFC)); err != nil {
		t.Errorf("normalized entry missing: %v", err)
	}

	rescan, err := a.Scan(report.RescanRoot)
	if err != nil {
		t.Fatalf("re-Scan() error = %v", err)
	}
	if rescan.Root != nil {
		t.Errorf("re-Scan() found candidates after conversion")
	}

	ops, err := a.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("GetHistory() returned %d operations, want 1", len(ops))
	}
	if ops[0].Operation != "Convert" || ops[0].Parameters != root {
		t.Errorf("operation = %+v", ops[0])
	}

	_, renames, err := a.GetOperation(ops[0].ID)
	if err != nil {
		t.Fatalf("GetOperation() error = %v", err)
	}
	if len(renames) != len(report.Outcomes) {
		t.Errorf("recorded %d renames, want %d", len(renames), len(report.Outcomes))
	}
	if a.Operation().Status != model.StatusSuccess {
		t.Errorf("operation status = %q, want %q", a.Operation().Status, model.StatusSuccess)
	}
}

func TestNFCApp_ConvertNothingSelected(t *testing.T) {
	root := makeTree(t)
	a := newTestApp(t, "Convert", nil)
	defer a.Close()

	result, err := a.Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	_, err = a.Convert(root, nfc.NewSelectionTree(result.Root))
	if !errors.Is(err, nfc.ErrNothingSelected) {
		t.Fatalf("Convert() error = %v, want ErrNothingSelected", err)
	}
	if a.Operation().Persisted() {
		t.Error("operation persisted although nothing was selected")
	}
	if _, err := os.Stat(filepath.Join(root, cafeNFD)); err != nil {
		t.Errorf("original entry touched: %v", err)
	}
}

func TestNFCApp_ConvertPartialFailure(t *testing.T) {
	root := makeTree(t)
	// An existing NFC folder blocks the folder rename; the file inside still converts.
	if err := os.Mkdir(filepath.Join(root, cafeNFC), 0755); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, "Convert", nil)
	defer a.Close()

	result, err := a.Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	tree := nfc.NewSelectionTree(result.Root)
	tree.SetAll(true)

	report, err := a.Convert(root, tree)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Reason() != nfc.ReasonTargetExists {
		t.Fatalf("failures = %+v, want one target_exists", failures)
	}
	if a.Operation().Status != model.StatusPartial {
		t.Errorf("operation status = %q, want %q", a.Operation().Status, model.StatusPartial)
	}
	if _, err := os.Stat(filepath.Join(root, cafeNFD, resumeNFC)); err != nil {
		t.Errorf("file inside blocked folder not converted: %v", err)
	}
}

func TestNFCApp_Preview(t *testing.T) {
	root := makeTree(t)
	a := newTestApp(t, "Convert", nil)
	defer a.Close()

	result, err := a.Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	tree := nfc.NewSelectionTree(result.Root)
	tree.SetAll(true)

	report, err := a.Preview(root, tree)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if report.Failed != 0 {
		t.Errorf("Failed = %d, want 0", report.Failed)
	}
	if _, err := os.Stat(filepath.Join(root, cafeNFD, resumeNFD)); err != nil {
		t.Errorf("Preview() renamed entries: %v", err)
	}
}

func TestNFCApp_ScanRejectsFile(t *testing.T) {
	root := makeTree(t)
	a := newTestApp(t, "Scan", nil)
	defer a.Close()

	if _, err := a.Scan(filepath.Join(root, "plain.txt")); err == nil {
		t.Fatal("Scan() expected error for a regular file")
	}
}

func TestNFCApp_ExportHistory(t *testing.T) {
	a := newTestApp(t, "Export", nil)
	defer a.Close()

	dest := filepath.Join(t.TempDir(), "history.db")
	if err := a.ExportHistory(dest); err != nil {
		t.Fatalf("ExportHistory() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if err := a.ExportHistory(dest); err == nil {
		t.Fatal("ExportHistory() expected error when destination exists")
	}
}

func TestNewNFCApp_RequiresMigratedDatabase(t *testing.T) {
	cfg := config.NewConfig("host-x", t.TempDir())

	_, err := newNFCApp(cfg, "Convert", nil, &bytes.Buffer{})
	if err == nil {
		t.Fatal("newNFCApp() expected error for unmigrated database")
	}
}
