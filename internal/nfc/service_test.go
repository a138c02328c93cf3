package nfc_test

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"nfc-go/internal/model"
	"nfc-go/internal/nfc"
	"nfc-go/internal/testutil"
)

type serviceFixture struct {
	svc    *nfc.NFCService
	fsmgr  *testutil.MockFilesystemManager
	db     nfc.Database
	status []string
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		fsmgr: testutil.NewMockFilesystemManager(),
		db:    testutil.NewTestDatabase(t),
	}
	clock := testutil.FixedClock()
	clock.Step = time.Second
	f.svc = nfc.NewNFCService(f.db, f.fsmgr, nfc.NewNopLogger(),
		nfc.StatusFunc(func(msg string) { f.status = append(f.status, msg) }),
		clock, testutil.NewSequenceIDGenerator("rename"))
	return f
}

func (f *serviceFixture) resolve(t *testing.T, path string) *nfc.Path {
	t.Helper()
	p, err := f.fsmgr.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(%q) error = %v", path, err)
	}
	return p
}

func (f *serviceFixture) scanAll(t *testing.T, root *nfc.Path) *nfc.SelectionTree {
	t.Helper()
	result, err := f.svc.Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	tree := nfc.NewSelectionTree(result.Root)
	tree.SetAll(true)
	return tree
}

func TestNFCService_Scan(t *testing.T) {
	t.Run("reports status", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/"+cafeNFD+"/"+resumeNFD, nil)

		result, err := f.svc.Scan(f.resolve(t, "/data"))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if result.CandidateCount() != 2 {
			t.Errorf("CandidateCount() = %d, want 2", result.CandidateCount())
		}
		want := []string{"Scanning /data...", "Scan complete: 2 candidate(s)."}
		if len(f.status) != 2 || f.status[0] != want[0] || f.status[1] != want[1] {
			t.Errorf("status = %q, want %q", f.status, want)
		}
	})

	t.Run("rejects a file", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/file.txt", nil)

		if _, err := f.svc.Scan(f.resolve(t, "/data/file.txt")); err == nil {
			t.Fatal("Scan() expected error for a file")
		}
	})
}

func TestNFCService_Convert(t *testing.T) {
	t.Run("nothing selected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/"+resumeNFD, nil)
		root := f.resolve(t, "/data")

		result, err := f.svc.Scan(root)
		if err != nil {
			t.Fatal(err)
		}
		_, err = f.svc.Convert(root, nfc.NewSelectionTree(result.Root), 0)
		if !errors.Is(err, nfc.ErrNothingSelected) {
			t.Fatalf("Convert() error = %v, want ErrNothingSelected", err)
		}
		if len(f.fsmgr.Renames()) != 0 {
			t.Errorf("Renames() = %v, want none", f.fsmgr.Renames())
		}
	})

	t.Run("records every outcome", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/a-"+resumeNFD, nil)
		f.fsmgr.AddFile("/data/b-"+resumeNFD, nil)
		f.fsmgr.AddFile("/data/b-"+resumeNFC, nil)
		root := f.resolve(t, "/data")
		tree := f.scanAll(t, root)

		op, err := f.db.CreateOperation("Convert", "/data")
		if err != nil {
			t.Fatal(err)
		}

		report, err := f.svc.Convert(root, tree, op.ID)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if report.Succeeded != 2 || report.Failed != 1 {
			t.Errorf("Succeeded=%d Failed=%d, want 2 and 1", report.Succeeded, report.Failed)
		}
		if report.RescanRoot != "/data" {
			t.Errorf("RescanRoot = %q, want /data", report.RescanRoot)
		}
		failures := report.Failures()
		if len(failures) != 1 || failures[0].RelativePath != "b-"+resumeNFD {
			t.Errorf("Failures() = %+v", failures)
		}

		records, err := f.db.ListRenamesForOperation(op.ID)
		if err != nil {
			t.Fatal(err)
		}
		wantStatus := []string{model.StatusSkipped, model.StatusSuccess, string(nfc.ReasonTargetExists)}
		if len(records) != len(wantStatus) {
			t.Fatalf("got %d records, want %d", len(records), len(wantStatus))
		}
		for i, r := range records {
			if r.Status != wantStatus[i] {
				t.Errorf("record %d Status = %q, want %q", i, r.Status, wantStatus[i])
			}
			if r.ScanRoot != "/data" || r.OperationID != op.ID {
				t.Errorf("record %d = %+v", i, r)
			}
		}
		if records[0].ID != "rename-1" || records[0].Kind != "folder" || records[1].Kind != "file" {
			t.Errorf("record 0 = %+v, record 1 = %+v", records[0], records[1])
		}
		if want := time.Date(2024, 1, 15, 10, 30, 1, 0, time.UTC); !records[1].CreatedAt.Equal(want) {
			t.Errorf("record 1 CreatedAt = %v, want %v", records[1].CreatedAt, want)
		}
	})

	t.Run("io error detail is recorded", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/"+resumeNFD, nil)
		f.fsmgr.FailRename("/data/"+resumeNFD, fs.ErrPermission)
		root := f.resolve(t, "/data")
		tree := f.scanAll(t, root)
		op, _ := f.db.CreateOperation("Convert", "/data")

		if _, err := f.svc.Convert(root, tree, op.ID); err != nil {
			t.Fatalf("Convert() error = %v", err)
		}

		records, _ := f.db.ListRenamesForOperation(op.ID)
		last := records[len(records)-1]
		if last.Status != string(nfc.ReasonIOError) || last.Detail == "" {
			t.Errorf("record = %+v", last)
		}
	})

	t.Run("operation id zero is not recorded", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/"+resumeNFD, nil)
		root := f.resolve(t, "/data")

		report, err := f.svc.Convert(root, f.scanAll(t, root), 0)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if report.Failed != 0 {
			t.Errorf("Failed = %d", report.Failed)
		}
		ops, _ := f.db.ListOperations(10)
		if len(ops) != 0 {
			t.Errorf("operations = %v, want none", ops)
		}
	})

	t.Run("renamed root is rescanned at its new path", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/"+cafeNFD+"/"+resumeNFD, nil)
		root := f.resolve(t, "/data/"+cafeNFD)

		report, err := f.svc.Convert(root, f.scanAll(t, root), 0)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if report.Failed != 0 {
			t.Fatalf("failures = %+v", report.Failures())
		}
		want := "/data/" + cafeNFC
		if report.RescanRoot != want {
			t.Errorf("RescanRoot = %q, want %q", report.RescanRoot, want)
		}
		if !f.fsmgr.Exists(want + "/" + resumeNFC) {
			t.Errorf("renames = %v", f.fsmgr.Renames())
		}

		rescan, err := f.svc.Scan(f.resolve(t, report.RescanRoot))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if rescan.Root != nil {
			t.Error("re-scan still finds candidates")
		}
	})
}

func TestNFCService_Preview(t *testing.T) {
	f := newServiceFixture(t)
	f.fsmgr.AddFile("/data/"+resumeNFD, nil)
	root := f.resolve(t, "/data")

	report, err := f.svc.Preview(root, f.scanAll(t, root))
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 0 {
		t.Errorf("Succeeded=%d Failed=%d", report.Succeeded, report.Failed)
	}
	if len(f.fsmgr.Renames()) != 0 {
		t.Errorf("Preview() renamed: %v", f.fsmgr.Renames())
	}
}

// blockingFS stalls ReadDir until released so a scan can be held in flight.
type blockingFS struct {
	*testutil.MockFilesystemManager
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFS) ReadDir(absPath string) ([]fs.DirEntry, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.MockFilesystemManager.ReadDir(absPath)
}

func TestNFCService_Busy(t *testing.T) {
	mock := testutil.NewMockFilesystemManager()
	mock.AddFile("/data/"+resumeNFD, nil)
	fsmgr := &blockingFS{MockFilesystemManager: mock, entered: make(chan struct{}, 1), release: make(chan struct{})}
	svc := nfc.NewNFCService(nil, fsmgr, nfc.NewNopLogger(), nil, testutil.FixedClock(), testutil.NewSequenceIDGenerator("rename"))

	root, err := fsmgr.Resolve("/data")
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error)
	go func() {
		_, err := svc.Scan(root)
		done <- err
	}()
	<-fsmgr.entered

	if _, err := svc.Scan(root); !errors.Is(err, nfc.ErrBusy) {
		t.Errorf("second Scan() error = %v, want ErrBusy", err)
	}

	tree := nfc.NewSelectionTree(nfc.NewScanner(mock, nfc.NewNopLogger()).Scan(root).Root)
	tree.SetAll(true)
	if _, err := svc.Convert(root, tree, 0); !errors.Is(err, nfc.ErrBusy) {
		t.Errorf("Convert() during scan error = %v, want ErrBusy", err)
	}

	close(fsmgr.release)
	if err := <-done; err != nil {
		t.Fatalf("first Scan() error = %v", err)
	}
	if _, err := svc.Scan(root); err != nil {
		t.Errorf("Scan() after release error = %v", err)
	}
	if len(mock.Renames()) != 0 {
		t.Errorf("Renames() = %v, want none", mock.Renames())
	}
}

func TestNFCService_History(t *testing.T) {
	t.Run("without database", func(t *testing.T) {
		svc := nfc.NewNFCService(nil, testutil.NewMockFilesystemManager(), nfc.NewNopLogger(), nil, testutil.FixedClock(), testutil.NewSequenceIDGenerator("rename"))
		ops, err := svc.GetHistory(10)
		if err != nil || ops != nil {
			t.Errorf("GetHistory() = %v, %v; want nil, nil", ops, err)
		}
		if _, _, err := svc.GetOperation(1); err == nil {
			t.Error("GetOperation() expected error without database")
		}
	})

	t.Run("lists operations and renames", func(t *testing.T) {
		f := newServiceFixture(t)
		f.fsmgr.AddFile("/data/"+resumeNFD, nil)
		root := f.resolve(t, "/data")
		op, _ := f.db.CreateOperation("Convert", "/data")
		if _, err := f.svc.Convert(root, f.scanAll(t, root), op.ID); err != nil {
			t.Fatal(err)
		}

		ops, err := f.svc.GetHistory(10)
		if err != nil || len(ops) != 1 {
			t.Fatalf("GetHistory() = %v, %v", ops, err)
		}

		got, renames, err := f.svc.GetOperation(op.ID)
		if err != nil {
			t.Fatalf("GetOperation() error = %v", err)
		}
		if got.ID != op.ID || len(renames) != 2 {
			t.Errorf("GetOperation() = %+v, %d renames", got, len(renames))
		}

		if _, _, err := f.svc.GetOperation(999); err == nil {
			t.Error("GetOperation(999) expected error")
		}
	})
}
