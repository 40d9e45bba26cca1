package loanengine

import (
	"encoding/json"
	"fmt"
	"time"
)

// AbsentDate is the display value used whenever a date is unavailable.
const AbsentDate = "-"

// indonesianMonths holds the id-ID long month names used for display
// formatting, indexed by time.Month-1.
var indonesianMonths = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Timestamp is the canonical instant type of the engine. The zero value
// means "no date available". Backends have emitted instants in several
// shapes over time (a Firestore-style {"_seconds":N} wrapper, RFC3339
// strings, bare epoch numbers, or null); Timestamp absorbs all of them
// on decode and treats anything unrecognizable as absent.
type Timestamp struct {
	t     time.Time
	valid bool
}

// TimestampOf wraps a concrete instant.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{t: t, valid: true}
}

// TimestampFromPtr wraps a nullable instant; nil maps to absent.
func TimestampFromPtr(t *time.Time) Timestamp {
	if t == nil {
		return Timestamp{}
	}
	return TimestampOf(*t)
}

// Time returns the underlying instant and whether one is present.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.valid
}

// Present reports whether a date is available.
func (ts Timestamp) Present() bool {
	return ts.valid
}

// epochWrapper matches the Firestore-era timestamp shape. Both the REST
// (_seconds) and admin SDK (seconds) key spellings have been observed.
type epochWrapper struct {
	Seconds     *int64 `json:"seconds"`
	UnderscoreS *int64 `json:"_seconds"`
}

// UnmarshalJSON accepts null, an epoch-seconds wrapper object, an RFC3339
// (or date-only) string, or a bare epoch number. It never fails: malformed
// input decodes to the absent value.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '{':
		var w epochWrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return nil
		}
		secs := w.UnderscoreS
		if secs == nil {
			secs = w.Seconds
		}
		if secs != nil {
			*ts = TimestampOf(time.Unix(*secs, 0).UTC())
		}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				*ts = TimestampOf(t)
				return nil
			}
		}
	default:
		var secs int64
		if err := json.Unmarshal(data, &secs); err != nil {
			return nil
		}
		*ts = TimestampOf(time.Unix(secs, 0).UTC())
	}
	return nil
}

// MarshalJSON encodes present instants as RFC3339 and absent ones as null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.Format(time.RFC3339))
}

// FormatDate renders a timestamp in the long Indonesian date form used
// across the admin screens ("17 Agustus 2025"). Absent input yields "-".
func FormatDate(ts Timestamp) string {
	t, ok := ts.Time()
	if !ok {
		return AbsentDate
	}
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// startOfDay truncates an instant to midnight of its calendar day in its
// own location, so comparisons stay correct across DST boundaries.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
