// Package media stores the raw bytes of uploaded evidence.
package media

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("media not found")

// Store keeps evidence bytes under slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// EvidenceKey returns the key for an evidence file, e.g. "claims/CLM1/<id>.jpg".
func EvidenceKey(claimID, evidenceID, ext string) string {
	return path.Join("claims", claimID, evidenceID+strings.ToLower(ext))
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, bool) {
	k := path.Clean("/" + key)[1:]
	if k == "" || strings.HasPrefix(k, "..") {
		return "", false
	}
	return k, true
}
