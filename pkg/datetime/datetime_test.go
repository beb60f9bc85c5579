package datetime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2025-03-15")
	assert.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 15, d.Day())

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	d := NewDate(2025, time.June, 1)
	data, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.Equal(t, `"2025-06-01"`, string(data))

	var parsed Date
	assert.NoError(t, json.Unmarshal([]byte(`"2025-06-01"`), &parsed))
	assert.True(t, parsed.Equal(d))

	// RFC3339 fallback keeps only the date portion
	assert.NoError(t, json.Unmarshal([]byte(`"2025-06-01T18:30:00Z"`), &parsed))
	assert.True(t, parsed.Equal(d))
}

func TestDate_AddDaysAndDaysUntil(t *testing.T) {
	t.Parallel()

	d := NewDate(2025, time.January, 30)
	next := d.AddDays(3)
	assert.Equal(t, "2025-02-02", next.String())
	assert.Equal(t, 3, d.DaysUntil(next))
	assert.Equal(t, -3, next.DaysUntil(d))
}

func TestDate_StartOfWeek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Date
		want string
	}{
		{"wednesday", NewDate(2025, time.June, 4), "2025-06-01"},
		{"sunday stays", NewDate(2025, time.June, 1), "2025-06-01"},
		{"saturday", NewDate(2025, time.June, 7), "2025-06-01"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.in.StartOfWeek().String())
		})
	}
}

func TestDate_StartOfMonth(t *testing.T) {
	t.Parallel()

	d := NewDate(2025, time.December, 25)
	assert.Equal(t, "2025-12-01", d.StartOfMonth().String())
}

func TestDate_Scan(t *testing.T) {
	t.Parallel()

	var d Date
	assert.NoError(t, d.Scan(time.Date(2025, time.May, 9, 14, 30, 0, 0, time.FixedZone("X", 3600))))
	assert.Equal(t, "2025-05-09", d.String())

	assert.NoError(t, d.Scan("2025-05-10"))
	assert.Equal(t, "2025-05-10", d.String())

	assert.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
