// Package severity normalizes source log levels (numeric codes or string
// labels) onto a fixed, totally ordered severity set and provides rank
// comparisons for threshold filtering.
package severity

import (
	"fmt"
	"strings"
)

// Level is a normalized log severity drawn from a fixed ordered set.
type Level string

// The closed severity set, from least to most severe.
const (
	Debug    Level = "debug"
	Log      Level = "log"
	Info     Level = "info"
	Warning  Level = "warning"
	Error    Level = "error"
	Fatal    Level = "fatal"
	Critical Level = "critical"
)

// ranks assigns a strictly increasing rank to each level.
var ranks = map[Level]int{
	Debug:    1,
	Log:      2,
	Info:     3,
	Warning:  4,
	Error:    5,
	Fatal:    6,
	Critical: 7,
}

// fromCode maps the well-known numeric source codes onto severities.
var fromCode = map[int64]Level{
	10: Debug,
	20: Debug,
	30: Info,
	40: Warning,
	50: Error,
	60: Fatal,
}

// fromLabel maps string source labels onto severities. Matching is
// case-sensitive; anything else normalizes to Info.
var fromLabel = map[string]Level{
	"trace":   Debug,
	"debug":   Debug,
	"info":    Info,
	"warning": Warning,
	"error":   Error,
	"fatal":   Fatal,
}

// Normalize maps a source level token to a Level. Source levels are either
// numeric codes (10/20/30/40/50/60) or string labels
// (trace/debug/info/warning/error/fatal). Normalize is total: any
// unrecognized input, including nil, yields Info.
func Normalize(v any) Level {
	switch t := v.(type) {
	case string:
		if l, ok := fromLabel[t]; ok {
			return l
		}
	case float64:
		// JSON numbers decode as float64; only whole values are valid codes.
		if t == float64(int64(t)) {
			if l, ok := fromCode[int64(t)]; ok {
				return l
			}
		}
	case int:
		if l, ok := fromCode[int64(t)]; ok {
			return l
		}
	case int64:
		if l, ok := fromCode[t]; ok {
			return l
		}
	}
	return Info
}

// Rank returns the level's position in the total order; higher is more
// severe. Unknown levels rank as Info.
func (l Level) Rank() int {
	if r, ok := ranks[l]; ok {
		return r
	}
	return ranks[Info]
}

// Meets reports whether l is at or above the threshold level.
func (l Level) Meets(threshold Level) bool {
	return l.Rank() >= threshold.Rank()
}

// Levels returns the closed severity set in rank order.
func Levels() []Level {
	return []Level{Debug, Log, Info, Warning, Error, Fatal, Critical}
}

// Names returns the allowed level names in rank order.
func Names() []string {
	levels := Levels()
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = string(l)
	}
	return names
}

// Parse validates a configured level name against the closed severity set.
// Unlike Normalize it does not fall back to Info: an unknown name is a
// configuration mistake and the error names the allowed set.
func Parse(name string) (Level, error) {
	l := Level(name)
	if _, ok := ranks[l]; !ok {
		return "", fmt.Errorf("unknown severity %q, allowed: %s", name, strings.Join(Names(), ", "))
	}
	return l, nil
}
