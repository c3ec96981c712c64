package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/RameshMYatnalli/new-claimsat/internal/claims"
	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"go.uber.org/zap"
)

// InboxUser is recorded as the performer of evidence attached from an inbox.
const InboxUser = "inbox"

// Attacher attaches evidence to a claim.
type Attacher interface {
	AddEvidence(ctx context.Context, claimID string, up claims.Upload) (*models.Evidence, error)
}

// Inbox attaches files dropped at <root>/<claim_id>/<name> to that claim and
// removes them once attached. Files for unknown claims are left in place.
type Inbox struct {
	roots    []string
	attacher Attacher
	logger   *zap.Logger
	watcher  *Watcher

	// Ingest is serialized so a file seen by both the initial sync and a
	// watch event is attached once.
	mu sync.Mutex
}

// NewInbox creates an inbox over cfg.Directories.
func NewInbox(cfg config.InboxConfig, attacher Attacher, logger *zap.Logger, opts ...Option) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	roots := make([]string, len(cfg.Directories))
	for i, d := range cfg.Directories {
		roots[i] = filepath.Clean(d)
	}
	in := &Inbox{roots: roots, attacher: attacher, logger: logger}
	in.watcher = New(roots, cfg.Extensions, in.handle, append([]Option{WithLogger(logger)}, opts...)...)
	return in
}

// ClaimIDFor returns the claim a file belongs to. Only files exactly one
// directory below a root qualify.
func (in *Inbox) ClaimIDFor(path string) (string, bool) {
	clean := filepath.Clean(path)
	for _, root := range in.roots {
		rel, err := filepath.Rel(root, clean)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], true
		}
	}
	return "", false
}

// Ingest attaches one file and removes it. A file that no longer exists is
// not an error.
func (in *Inbox) Ingest(ctx context.Context, path string) error {
	claimID, ok := in.ClaimIDFor(path)
	if !ok {
		return fmt.Errorf("%s is not inside a claim directory", path)
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read inbox file: %w", err)
	}
	if len(data) == 0 {
		// Still being written; the next write event retries.
		return nil
	}
	ev, err := in.attacher.AddEvidence(ctx, claimID, claims.Upload{
		Filename:    filepath.Base(path),
		Data:        data,
		PerformedBy: InboxUser,
	})
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("evidence %s attached but inbox file not removed: %w", ev.ID, err)
	}
	in.logger.Info("inbox evidence attached",
		zap.String("claim_id", claimID),
		zap.String("evidence_id", ev.ID),
		zap.String("file", filepath.Base(path)))
	return nil
}

func (in *Inbox) handle(path string) {
	if _, ok := in.ClaimIDFor(path); !ok {
		return
	}
	if err := in.Ingest(context.Background(), path); err != nil {
		in.logger.Warn("inbox file not attached", zap.String("path", path), zap.Error(err))
	}
}

// Start watches the roots and ingests files already present.
func (in *Inbox) Start(ctx context.Context) error {
	if err := in.watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch inbox: %w", err)
	}
	go in.watcher.SyncExisting()
	return nil
}

// Stop stops watching.
func (in *Inbox) Stop() {
	in.watcher.Stop()
}
