// Package evidence scores uploaded evidence media. It measures photo-quality
// signals only (focus, exposure, detail, resolution) and never inspects scene content.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the broad media class of an evidence item.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png"}
	videoExtensions = []string{".mp4", ".mov", ".avi"}
)

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ClassifyExtension maps a file extension to its Kind. Anything that is not a
// known image or video extension is a document.
func ClassifyExtension(ext string) Kind {
	ext = NormalizeExtension(ext)
	for _, e := range imageExtensions {
		if ext == e {
			return KindImage
		}
	}
	for _, e := range videoExtensions {
		if ext == e {
			return KindVideo
		}
	}
	return KindDocument
}

// DetectExtension sniffs data and returns the extension of its detected type,
// e.g. ".jpg" or ".mp4". Unknown content yields "".
func DetectExtension(data []byte) string {
	return mimetype.Detect(data).Extension()
}

// ExtensionFor returns the declared extension of filename, or the sniffed one
// when the name carries none.
func ExtensionFor(filename string, data []byte) string {
	if ext := NormalizeExtension(filepath.Ext(filename)); ext != "" && ext != "." {
		return ext
	}
	return DetectExtension(data)
}

// ContentHash returns the hex SHA-256 of data, used as evidence identity.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
