package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ymd(year int, month time.Month, day int) Date {
	return NewDate(year, month, day)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2024-2-29")
	assert.Error(t, err)
	_, err = ParseDate("not a date")
	assert.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	a := ymd(2024, time.January, 1)
	b := ymd(2024, time.March, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(ymd(2024, time.January, 1)))
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := ymd(2023, time.November, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2023-11-15"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))
}

func TestEndOfMonth(t *testing.T) {
	assert.True(t, ymd(2023, time.January, 31).Equal(ymd(2023, time.January, 30).EndOfMonth()))
	assert.True(t, ymd(2023, time.February, 28).Equal(ymd(2023, time.February, 9).EndOfMonth()))
	assert.True(t, ymd(2024, time.February, 29).Equal(ymd(2024, time.February, 9).EndOfMonth()))
	assert.True(t, ymd(2023, time.December, 31).Equal(ymd(2023, time.December, 24).EndOfMonth()))
}

func TestStartOfMonth(t *testing.T) {
	assert.True(t, ymd(2023, time.January, 1).Equal(ymd(2023, time.January, 30).StartOfMonth()))
	assert.True(t, ymd(2024, time.February, 1).Equal(ymd(2024, time.February, 9).StartOfMonth()))
}

func TestStartOfWeek(t *testing.T) {
	assert.True(t, ymd(2023, time.January, 30).Equal(ymd(2023, time.February, 4).StartOfWeek()))
	assert.True(t, ymd(2023, time.November, 13).Equal(ymd(2023, time.November, 15).StartOfWeek()))
	assert.True(t, ymd(2023, time.November, 13).Equal(ymd(2023, time.November, 13).StartOfWeek()))
	assert.True(t, ymd(2024, time.December, 30).Equal(ymd(2025, time.January, 4).StartOfWeek()))
}

func TestEndOfWeek(t *testing.T) {
	assert.True(t, ymd(2023, time.February, 5).Equal(ymd(2023, time.January, 30).EndOfWeek()))
	assert.True(t, ymd(2023, time.November, 19).Equal(ymd(2023, time.November, 15).EndOfWeek()))
	assert.True(t, ymd(2023, time.November, 12).Equal(ymd(2023, time.November, 12).EndOfWeek()))
	assert.True(t, ymd(2025, time.January, 5).Equal(ymd(2024, time.December, 31).EndOfWeek()))
}

func TestDateOfTruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	stamp := time.Date(2024, time.March, 1, 2, 0, 0, 0, loc) // Feb 29 21:00 UTC
	assert.Equal(t, "2024-02-29", DateOf(stamp).String())
}
