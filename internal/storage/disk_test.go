package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "claimsat.db")
	media := filepath.Join(dir, "media", "claims", "CLM00000001")
	if err := os.MkdirAll(media, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		db:                            "hello",
		db + "-wal":                   "abc",
		filepath.Join(media, "a.jpg"): "ab",
		filepath.Join(media, "b.mp4"): "c",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"database only", []string{db}, 5},
		{"database with missing shm", []string{db, db + "-wal", db + "-shm"}, 8},
		{"directory tree", []string{filepath.Join(dir, "media")}, 3},
		{"empty path skipped", []string{"", db}, 5},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DiskUsageBytes = %d, want %d", got, tt.want)
			}
		})
	}
}
