package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEvidenceKey(t *testing.T) {
	if got := EvidenceKey("CLM1", "abc", ".JPG"); got != "claims/CLM1/abc.jpg" {
		t.Errorf("EvidenceKey = %q", got)
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"claims/a/b.jpg", "claims/a/b.jpg", true},
		{"/claims//a/./b.jpg", "claims/a/b.jpg", true},
		{"../etc/passwd", "etc/passwd", true},
		{"", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		got, ok := cleanKey(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("cleanKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFSStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "media")
	s, err := NewFSStore(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	key := EvidenceKey("CLM1", "ev1", ".png")

	if err := s.Put(ctx, key, []byte("pixels"), "image/png"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pixels" {
		t.Errorf("Get = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "claims", "CLM1", "ev1.png")); err != nil {
		t.Errorf("file not at expected path: %v", err)
	}

	if err := s.Put(ctx, key, []byte("replaced"), ""); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, key)
	if string(got) != "replaced" {
		t.Errorf("overwrite: Get = %q", got)
	}

	n, err := s.UsageBytes()
	if err != nil || n != int64(len("replaced")) {
		t.Errorf("UsageBytes = %d, %v", n, err)
	}

	if _, err := s.Get(ctx, "claims/none.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key: err = %v, want ErrNotFound", err)
	}
	if err := s.Put(ctx, "", []byte("x"), ""); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestNewS3Store_requiresBucket(t *testing.T) {
	if _, err := NewS3Store(S3Config{Region: "us-east-1"}); err == nil {
		t.Error("expected error without bucket")
	}
	s, err := NewS3Store(S3Config{Bucket: "evidence", Region: "us-east-1", Endpoint: "http://localhost:9000"})
	if err != nil || s == nil {
		t.Fatalf("NewS3Store = %v, %v", s, err)
	}
}
