package loanengine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	epoch := time.Date(2025, time.August, 17, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		present bool
		want    time.Time
	}{
		{"null", `null`, false, time.Time{}},
		{"firestore wrapper", `{"_seconds":1755426600}`, true, epoch},
		{"admin sdk wrapper", `{"seconds":1755426600}`, true, epoch},
		{"bare epoch", `1755426600`, true, epoch},
		{"rfc3339", `"2025-08-17T10:30:00Z"`, true, epoch},
		{"date only", `"2025-08-17"`, true, time.Date(2025, time.August, 17, 0, 0, 0, 0, time.UTC)},
		{"empty wrapper", `{}`, false, time.Time{}},
		{"garbage string", `"not a date"`, false, time.Time{}},
		{"garbage object", `{"_seconds":"soon"}`, false, time.Time{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.input), &ts))
			got, ok := ts.Time()
			assert.Equal(t, tc.present, ok)
			if tc.present {
				assert.True(t, tc.want.Equal(got), "got %v want %v", got, tc.want)
			}
		})
	}
}

func TestTimestampMarshal(t *testing.T) {
	out, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	out, err = json.Marshal(TimestampOf(time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-08T00:00:00Z"`, string(out))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(Timestamp{}))
	assert.Equal(t, "-", FormatDate(TimestampFromPtr(nil)))

	ts := TimestampOf(time.Date(2025, time.August, 17, 23, 15, 0, 0, time.UTC))
	assert.Equal(t, "17 Agustus 2025", FormatDate(ts))

	ts = TimestampOf(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2 Januari 2024", FormatDate(ts))
}

func TestFormatDateAllMonths(t *testing.T) {
	want := []string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
	for m := time.January; m <= time.December; m++ {
		ts := TimestampOf(time.Date(2025, m, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, "1 "+want[m-1]+" 2025", FormatDate(ts))
	}
}
