package utils

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DateTimeLayout is the canonical "YYYY-MM-DD HH:MM:SS" form.
	DateTimeLayout = "2006-01-02 15:04:05"
	// FileTimestampLayout is the filename-safe variant used in artifact names.
	FileTimestampLayout = "2006-01-02_15-04-05"
)

// layouts accepted by ParseTimestamp, tried in order.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateTimeLayout,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006/01/02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// FormatDate renders t in loc using the canonical layout.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateTimeLayout)
}

// UniqueId is the hex epoch-millisecond timestamp followed by six random hex characters.
func UniqueId(t time.Time) string {
	id := uuid.New()
	return strconv.FormatInt(t.UnixMilli(), 16) + hex.EncodeToString(id[:3])
}

// ParseTimestamp reads a timestamp in any of the common ISO-8601 shapes.
// The result is UTC with second precision; nil means empty or unparseable.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC().Truncate(time.Second)
			return &t
		}
	}
	return nil
}

// ParseEpochMillis converts a millisecond epoch into the same normalized form as ParseTimestamp.
func ParseEpochMillis(ms int64) *time.Time {
	t := time.UnixMilli(ms).UTC().Truncate(time.Second)
	return &t
}

// FormatTimestamp renders a normalized timestamp, nil stays nil.
func FormatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateTimeLayout)
	return &s
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func NilIfEmpty[T comparable](ptr T) *T {
	var defaultZero T
	if ptr == defaultZero {
		return nil
	}
	return &ptr
}

func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
