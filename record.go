package sentrypipe

import (
	"github.com/tidwall/gjson"
)

// Record is one decoded log line. Raw keeps the original JSON bytes so field
// lookups can use dotted paths; Fields is the decoded object handed to the
// scope-decoration hook. A Record is immutable once produced by the decoder
// and lives for exactly one pass through the pipeline.
type Record struct {
	Raw    []byte
	Fields map[string]any
}

// Get resolves a dotted path (e.g. "data.msg") against the raw line.
// Missing or non-object intermediate segments resolve to a non-existent
// result, never an error.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// decodeLine parses one framed line into a Record. Only JSON objects qualify:
// a record is by definition a mapping from string keys to values, so scalar
// and array lines are reported as malformed.
func decodeLine(line []byte) (Record, bool) {
	if !gjson.ValidBytes(line) {
		return Record{}, false
	}
	fields, ok := gjson.ParseBytes(line).Value().(map[string]any)
	if !ok {
		return Record{}, false
	}
	return Record{Raw: line, Fields: fields}, true
}
