// Package artifacts writes raw fetch output to disk for manual
// inspection, bypassing the cache entirely.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const maxTagLen = 90

// Dumper saves debug artifacts under a single directory.
type Dumper struct {
	dir    string
	logger *zap.Logger
}

// New creates the dump directory if needed.
func New(dir string, logger *zap.Logger) (*Dumper, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("dump directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create dump dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dumper{dir: dir, logger: logger}, nil
}

// SaveHTML writes the raw markup under a sanitized tag and returns the
// file path.
func (d *Dumper) SaveHTML(tag, markup string) (string, error) {
	path := filepath.Join(d.dir, sanitizeTag(tag)+".html")
	if err := os.WriteFile(path, []byte(markup), 0o600); err != nil {
		return "", fmt.Errorf("write html artifact: %w", err)
	}
	d.logger.Info("html artifact saved", zap.String("path", path))
	return path, nil
}

// SavePNG writes a screenshot next to the markup. Empty data is a
// no-op: screenshots are best effort.
func (d *Dumper) SavePNG(tag string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	path := filepath.Join(d.dir, sanitizeTag(tag)+".png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write png artifact: %w", err)
	}
	d.logger.Info("screenshot artifact saved", zap.String("path", path))
	return path, nil
}

// sanitizeTag keeps only filename-safe runes, lowercased and bounded.
func sanitizeTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "page"
	}
	if len(out) > maxTagLen {
		out = out[:maxTagLen]
	}
	return out
}
