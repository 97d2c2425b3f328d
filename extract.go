package sentrypipe

import (
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
)

// Well-known record fields lifted into tags when present.
const (
	fieldLevel        = "level"
	fieldTags         = "tags"
	fieldBreadcrumbs  = "breadcrumbs"
	fieldRequestID    = "reqId"
	fieldResponseTime = "responseTime"
	fieldHostname     = "hostname"

	tagUUID         = "uuid"
	tagResponseTime = "responseTime"
	tagHostname     = "hostname"
	tagStreamID     = "stream_id"
)

// extracted holds the per-record fields resolved from the source record.
// Absent optional fields degrade to empty containers, never nil maps.
type extracted struct {
	message     string
	stack       string
	tags        map[string]string
	extra       map[string]any
	breadcrumbs []sentry.Breadcrumb
}

// extractFields resolves message, stack, tags, extra data, and breadcrumbs
// from one record. Message, stack, and extra keys all use dotted-path
// traversal; traversal short-circuits to absent on any missing intermediate
// segment. Extraction never fails.
func extractFields(rec Record, cfg *config) extracted {
	ex := extracted{
		tags:  make(map[string]string),
		extra: make(map[string]any),
	}

	// A message that is itself an object is treated as error-like: its
	// message/stack members win, with an explicit stack field overriding.
	msg := rec.Get(cfg.messageKey)
	if msg.IsObject() {
		ex.message = msg.Get("message").String()
		ex.stack = msg.Get("stack").String()
	} else {
		ex.message = msg.String()
	}
	if stack := rec.Get(cfg.stackKey); stack.Exists() {
		ex.stack = stack.String()
	}
	ex.message = truncate(ex.message, cfg.maxValueLength)
	ex.stack = truncate(ex.stack, cfg.maxValueLength)

	for _, key := range cfg.extraKeys {
		if v := rec.Get(key); v.Exists() {
			ex.extra[key] = v.Value()
		}
	}

	// Tags must be an object; a scalar tags field is skipped, not an error.
	if tags := rec.Get(fieldTags); tags.IsObject() {
		for k, v := range tags.Map() {
			ex.tags[k] = truncate(v.String(), cfg.maxValueLength)
		}
	}
	if v := rec.Get(fieldRequestID); v.Exists() {
		ex.tags[tagUUID] = v.String()
	}
	if v := rec.Get(fieldResponseTime); v.Exists() {
		ex.tags[tagResponseTime] = v.String()
	}
	if v := rec.Get(fieldHostname); v.Exists() {
		ex.tags[tagHostname] = v.String()
	}

	if crumbs := rec.Get(fieldBreadcrumbs); crumbs.IsArray() {
		for _, item := range crumbs.Array() {
			if !item.IsObject() {
				continue
			}
			crumb := sentry.Breadcrumb{
				Type:     item.Get("type").String(),
				Category: item.Get("category").String(),
				Message:  item.Get("message").String(),
			}
			if lvl := item.Get("level"); lvl.Exists() {
				crumb.Level = sentry.Level(lvl.String())
			}
			if data, ok := item.Get("data").Value().(map[string]any); ok {
				crumb.Data = data
			}
			if ts := item.Get("timestamp"); ts.Exists() {
				// Breadcrumb timestamps arrive as Unix seconds.
				sec, frac := int64(ts.Float()), ts.Float()
				crumb.Timestamp = time.Unix(sec, int64((frac-float64(sec))*float64(time.Second))).UTC()
			}
			ex.breadcrumbs = append(ex.breadcrumbs, crumb)
		}
	}

	return ex
}

// truncate caps a string at limit bytes without splitting a UTF-8 sequence.
// Only a trailing incomplete rune is backed off, at most utf8.UTFMax-1
// bytes; invalid bytes earlier in the value pass through untouched. A
// non-positive limit disables truncation.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := s[:limit]
	for i := 0; i < utf8.UTFMax-1; i++ {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
