// Package codec reads and writes host snapshots.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"flowview/internal/domain"
)

// ErrUnknownFormat is returned when no codec handles a format name or extension
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Importer interface for importing snapshots from various formats
type Importer interface {
	Parse(r io.Reader) (domain.Snapshot, error)
	Format() string
}

// Exporter interface for exporting snapshots to various formats
type Exporter interface {
	Export(snap domain.Snapshot, w io.Writer) error
	Format() string
}

// Codec both imports and exports
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered under name ("json", "yaml" or "yml")
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ForPath picks a codec by file extension
func ForPath(path string) (Codec, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ForFormat(ext)
}
