package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestUniqueDestination(t *testing.T) {
	dir := t.TempDir()

	first := UniqueDestination(dir, "report.pdf")
	if first != filepath.Join(dir, "report.pdf") {
		t.Fatalf("unexpected first destination %q", first)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	second := UniqueDestination(dir, "report.pdf")
	if second != filepath.Join(dir, "report_1.pdf") {
		t.Fatalf("unexpected second destination %q", second)
	}
	if err := os.WriteFile(second, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	third := UniqueDestination(dir, "report.pdf")
	if third != filepath.Join(dir, "report_2.pdf") {
		t.Fatalf("unexpected third destination %q", third)
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.1000/xyz123", "10_1000_xyz123"},
		{"Doe, Jane", "Doe_Jane"},
		{"  ", "unknown"},
		{"___", "unknown"},
		{"smith-2020", "smith-2020"},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
