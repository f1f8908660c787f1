package output

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_2016-02.pdf")
	w := NewFileWriter(path)

	if w.Destination() != path {
		t.Errorf("Destination = %q, want %q", w.Destination(), path)
	}

	exists, err := w.Exists(t.Context())
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("Exists = true before any write")
	}

	payload := []byte("%PDF-1.4 body")
	if err := w.Write(t.Context(), payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	exists, err = w.Exists(t.Context())
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("Exists = false after write")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Errorf("file content = %q, want %q", got, payload)
	}
}

func TestFileWriter_MissingParentDir(t *testing.T) {
	w := NewFileWriter(filepath.Join(t.TempDir(), "no-such-dir", "out.pdf"))
	if err := w.Write(t.Context(), []byte("x")); err == nil {
		t.Error("writing into a missing directory succeeded")
	}
}

func TestFor_LocalPath(t *testing.T) {
	w, err := For(t.Context(), "/tmp/report.pdf", "application/pdf", S3Config{})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if _, ok := w.(*fileWriter); !ok {
		t.Errorf("For returned %T, want *fileWriter", w)
	}
}

func TestIsS3URL(t *testing.T) {
	tests := []struct {
		dest string
		want bool
	}{
		{"s3://bucket/key.pdf", true},
		{"/var/reports/key.pdf", false},
		{"relative/key.pdf", false},
		{"S3://bucket/key.pdf", false}, // scheme is case-sensitive
	}
	for _, tt := range tests {
		if got := IsS3URL(tt.dest); got != tt.want {
			t.Errorf("IsS3URL(%q) = %v, want %v", tt.dest, got, tt.want)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://reports/2016/02/summary.pdf")
	if err != nil {
		t.Fatalf("ParseS3URL: %v", err)
	}
	if bucket != "reports" {
		t.Errorf("bucket = %q", bucket)
	}
	if key != "2016/02/summary.pdf" {
		t.Errorf("key = %q", key)
	}

	for _, raw := range []string{
		"s3://",
		"s3://bucket",
		"s3://bucket/",
		"s3:///key",
		"http://bucket/key",
	} {
		if _, _, err := ParseS3URL(raw); err == nil {
			t.Errorf("ParseS3URL(%q) succeeded, want error", raw)
		}
	}
}

func TestS3Writer_Destination(t *testing.T) {
	w := &s3Writer{bucket: "reports", key: "2016/summary.pdf"}
	if got, want := w.Destination(), "s3://reports/2016/summary.pdf"; got != want {
		t.Errorf("Destination = %q, want %q", got, want)
	}
}
