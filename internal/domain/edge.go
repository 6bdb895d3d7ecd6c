package domain

import (
	"fmt"
	"strconv"
)

// EdgeData carries the optional edge attributes
type EdgeData struct {
	// Value labels the edge (a switch case value). Nil means no label.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
	// Virtual marks a layout-only edge: drawn, but not real control flow.
	Virtual bool `json:"virtual,omitempty" yaml:"virtual,omitempty"`
}

// EdgeRecord is one directed edge of a host snapshot
type EdgeRecord struct {
	Source int      `json:"source" yaml:"source"`
	Target int      `json:"target" yaml:"target"`
	Data   EdgeData `json:"data" yaml:"data"`
}

// NewEdgeRecord creates a plain edge without a value
func NewEdgeRecord(source, target int) EdgeRecord {
	return EdgeRecord{Source: source, Target: target}
}

// ValueText renders the edge value the way it appears in element ids: "null" when absent
func (e EdgeRecord) ValueText() string {
	if e.Data.Value == nil {
		return "null"
	}
	return FormatScalar(e.Data.Value)
}

// DisplayLabel is the text drawn next to the edge, empty when there is no value
func (e EdgeRecord) DisplayLabel() string {
	if e.Data.Value == nil {
		return ""
	}
	return FormatScalar(e.Data.Value)
}

// FormatScalar stringifies a wire scalar with the shortest exact representation
// for numbers.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
