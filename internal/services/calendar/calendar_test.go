package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC)

	out, err := New().Generate(&GenerateInput{
		Event: &Event{
			UID:      "booking-1@pickup",
			Summary:  "Pickup",
			Location: "Riverside courts",
			Start:    start,
			End:      start.Add(2 * time.Hour),
			Stamp:    start.Add(-48 * time.Hour),
		},
	})
	require.NoError(t, err)

	body := string(out.Data)
	assert.Equal(t, "pickup-2026-10-21.ics", out.Filename)
	assert.Equal(t, "text/calendar; charset=utf-8", out.ContentType)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "UID:booking-1@pickup")
	assert.Contains(t, body, "DTSTART:20261021T230000Z")
	assert.Contains(t, body, "DTEND:20261022T010000Z")
	assert.Contains(t, body, "SUMMARY:Pickup")
	assert.Contains(t, body, "LOCATION:Riverside courts")
}

func TestGenerateRejectsBadWindow(t *testing.T) {
	start := time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC)

	_, err := New().Generate(&GenerateInput{
		Event: &Event{UID: "booking-1@pickup", Start: start, End: start},
	})
	assert.Error(t, err)

	_, err = New().Generate(&GenerateInput{})
	assert.Error(t, err)
}
