package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/inbox/CLM1/a.jpg", []string{".jpg"}, true},
		{"/inbox/CLM1/a.JPG", []string{"jpg"}, true},
		{"/inbox/CLM1/a.txt", []string{".jpg", ".mp4"}, false},
		{"/inbox/CLM1/a", nil, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestWatcher_debouncesWrites(t *testing.T) {
	dir := t.TempDir()
	var rec recorder
	w := New([]string{dir}, []string{".jpg"}, rec.add, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "photo.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		_, _ = f.Write([]byte("chunk"))
		time.Sleep(10 * time.Millisecond)
	}
	_ = f.Close()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".partial.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return len(rec.snapshot()) >= 1 })
	time.Sleep(300 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 1 || got[0] != path {
		t.Errorf("callbacks = %v, want exactly [%s]", got, path)
	}
}

func TestWatcher_newDirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	var rec recorder
	w := New([]string{dir}, nil, rec.add, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "CLM00000001")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		for _, p := range rec.snapshot() {
			if filepath.Base(p) == "a.jpg" {
				return true
			}
		}
		return false
	})
}

func TestWatcher_startCreatesRootsAndSyncs(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "inbox", "nested")
	var rec recorder
	w := New([]string{root}, []string{".mp4"}, rec.add)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root not created: %v", err)
	}

	w.Stop()
	if err := os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	w.SyncExisting()
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("synced = %v", got)
	}
}
