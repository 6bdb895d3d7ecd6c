package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"flowview/internal/domain"
)

// JSONCodec handles the host's JSON snapshot: an array of typed elements
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a snapshot from JSON. A JSON null yields an empty snapshot.
func (c *JSONCodec) Parse(r io.Reader) (domain.Snapshot, error) {
	var snap domain.Snapshot
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return snap, nil
}

// Export exports a snapshot to JSON
func (c *JSONCodec) Export(snap domain.Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if snap == nil {
		snap = domain.Snapshot{}
	}
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
