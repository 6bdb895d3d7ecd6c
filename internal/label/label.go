// Package label renders the display text of diagram nodes.
package label

import (
	"encoding/json"
	"strconv"
	"strings"

	"flowview/internal/domain"
)

const (
	// MaxParams is the number of parameter positions shown before truncation
	MaxParams = 5
	// Ellipsis is appended once when parameters were suppressed
	Ellipsis = "..."
	// hiddenParam is never displayed
	hiddenParam = "IsWaitFinish"
)

// alwaysShown params bypass the truncation budget
var alwaysShown = map[string]struct{}{
	"MessageId": {},
	"ASName":    {},
}

// AlwaysShown reports whether a parameter is exempt from truncation
func AlwaysShown(name string) bool {
	_, ok := alwaysShown[name]
	return ok
}

// Format returns the multi-line label of a node. It is pure: identical input
// yields identical output.
func Format(n domain.NodeRecord, flags domain.ViewFlags) string {
	lines := make([]string, 0, 4)

	if flags.ShowEventNames && n.Kind != domain.KindEntry {
		lines = append(lines, n.Data.Name)
	}

	switch n.Kind {
	case domain.KindEntry:
		lines = append(lines, n.Data.Name)
	case domain.KindAction:
		lines = append(lines, n.Data.Actor, n.Data.Action)
	case domain.KindSwitch:
		lines = append(lines, n.Data.Actor, n.Data.Query)
	case domain.KindFork:
		lines = append(lines, "Fork")
	case domain.KindJoin:
		lines = append(lines, "Join")
	case domain.KindSubFlow:
		lines = append(lines, n.Data.ResFlowchartName, "<"+n.Data.EntryPointName+">")
	default:
		lines = append(lines, strconv.Itoa(n.ID))
	}

	if flags.ShowParams && len(n.Data.Params) > 0 {
		lines = appendParams(lines, n.Data.Params)
	}

	return strings.Join(lines, "\n")
}

// appendParams adds one "name: value" line per visible parameter. Every shown or
// suppressed parameter advances the position counter; whitelisted names are
// shown regardless of position.
func appendParams(lines []string, params domain.Params) []string {
	pos := 0
	truncated := false
	for _, p := range params {
		if p.Name == hiddenParam {
			continue
		}
		if !AlwaysShown(p.Name) && pos >= MaxParams {
			truncated = true
		} else {
			lines = append(lines, p.Name+": "+FormatValue(p.Value))
		}
		pos++
	}
	if truncated {
		lines = append(lines, Ellipsis)
	}
	return lines
}

// FormatValue renders a parameter value. Numbers use six decimals with trailing
// zeros and a trailing point stripped.
func FormatValue(v any) string {
	switch val := v.(type) {
	case float64:
		return FormatNumber(val)
	case float32:
		return FormatNumber(float64(val))
	case int:
		return FormatNumber(float64(val))
	case int64:
		return FormatNumber(float64(val))
	case uint64:
		return FormatNumber(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return FormatNumber(f)
	}
	return domain.FormatScalar(v)
}

// FormatNumber renders f with six decimals, then strips trailing zeros and the
// decimal point: 1.5 -> "1.5", 2 -> "2", 0.000001 -> "0.000001".
func FormatNumber(f float64) string {
	if f == 0 {
		// normalizes negative zero
		f = 0
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
