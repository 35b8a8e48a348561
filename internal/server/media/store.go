// Package media stores images uploaded with articles. Stored objects are
// addressed by a generated key and served under /uploads/{key}.
package media

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/google/uuid"
)

// URLPrefix is where stored media is served.
const URLPrefix = "/uploads/"

// Store persists uploaded files and serves them back.
type Store interface {
	// Save stores body and returns the generated key.
	Save(ctx context.Context, originalName, contentType string, body io.Reader, size int64) (string, error)
	// Handler serves GET requests for keys; it is mounted with URLPrefix
	// stripped.
	Handler() http.Handler
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// NewKey returns a random key carrying the extension of originalName.
// Names with path traversal or a non-image extension are rejected.
func NewKey(originalName string) (string, error) {
	if originalName == "" || strings.Contains(originalName, "..") {
		return "", common.ErrInvalidFileName
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", common.ErrInvalidFileName
	}
	return uuid.NewString() + ext, nil
}

// PublicURL is the path under which key is served.
func PublicURL(key string) string {
	return URLPrefix + key
}

// validKey guards the serving side against keys we never generated.
func validKey(key string) bool {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(key))]
}
