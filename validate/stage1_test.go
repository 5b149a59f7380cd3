package validate

import (
	"os"
	"path/filepath"
	"testing"

	"archive/zip"

	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/rules"
)

func TestR1ArchivePathExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.zip")
	if err := os.WriteFile(path, []byte("not a real zip"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ctx := &dispatch.RunContext{ArchivePath: path}
	outcome, _, err := R1(ctx, &rules.Rule{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR1ArchivePathMissing(t *testing.T) {
	ctx := &dispatch.RunContext{ArchivePath: filepath.Join(t.TempDir(), "missing.zip")}
	outcome, _, err := R1(ctx, &rules.Rule{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR1NoArchivePathConfigured(t *testing.T) {
	ctx := &dispatch.RunContext{}
	outcome, _, err := R1(ctx, &rules.Rule{})
	if err == nil {
		t.Fatal("expected an error when no archive path is configured")
	}
	if outcome != dispatch.Error {
		t.Errorf("expected Error, got %v", outcome)
	}
}

func TestR2ValidZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.zip")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(out)
	if _, err := zw.Create("Predare/readme.txt"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	zw.Close()
	out.Close()

	ctx := &dispatch.RunContext{ArchivePath: path}
	outcome, _, err := R2(ctx, &rules.Rule{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR2NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.zip")
	if err := os.WriteFile(path, []byte("this is not a zip file"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ctx := &dispatch.RunContext{ArchivePath: path}
	outcome, _, err := R2(ctx, &rules.Rule{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}
