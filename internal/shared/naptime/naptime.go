// Package naptime normalizes device-reported timestamps into a single
// canonical UTC instant and renders instants in Nepal Standard Time
// (UTC+05:45, fixed offset, no DST).
package naptime

import (
	"errors"
	"strings"
	"time"
)

// Zone is Nepal Standard Time. Fixed offset rendering only.
var Zone = time.FixedZone("NST", 5*3600+45*60)

// ErrMalformedTimestamp means the input could not be parsed by any
// accepted form. Callers fall back to "now" instead of rejecting the
// sample: a broken device clock must not block ingestion.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// layouts with no offset information, interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Now returns the current canonical instant at stored precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Normalize converts a raw timestamp string into the canonical instant.
// Rules, in order:
//  1. absent input: the supplied now
//  2. explicit +05:45 offset: interpreted literally in that offset
//  3. any other explicit offset (including Z): standard offset arithmetic
//  4. no offset: treated as UTC
//  5. anything else: ErrMalformedTimestamp
//
// The result is always UTC, truncated to whole seconds, so that
// canonical -> local -> canonical round-trips losslessly.
func Normalize(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC().Truncate(time.Second), nil
	}

	// rules 2 and 3: RFC 3339 carries the offset, +05:45 or otherwise
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}

	// rule 4: naive timestamps are UTC
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.Truncate(time.Second), nil
		}
	}

	return time.Time{}, ErrMalformedTimestamp
}

// ToLocal expresses a canonical instant in Nepal Standard Time.
func ToLocal(t time.Time) time.Time {
	return t.In(Zone)
}

// RenderLocal returns the ISO 8601 rendering with the +05:45 offset.
func RenderLocal(t time.Time) string {
	return t.In(Zone).Format(time.RFC3339)
}

// FormatLocal returns the human display form, e.g. "2025-06-30 17:20:17 NST".
func FormatLocal(t time.Time) string {
	return t.In(Zone).Format("2006-01-02 15:04:05 NST")
}
