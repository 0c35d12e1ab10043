package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildICS(t *testing.T) {
	event := CalendarEvent{
		UID:      "tournament-42@liguebillard",
		Summary:  "Tournoi 3 Bandes, R2",
		Location: "Salle de Lyon; entrée B",
		Start:    time.Date(2025, time.October, 12, 9, 0, 0, 0, time.UTC),
		Duration: 8 * time.Hour,
	}

	ics := BuildICS(event)

	require.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	require.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
	require.Contains(t, ics, "UID:tournament-42@liguebillard\r\n")
	require.Contains(t, ics, "DTSTART:20251012T090000Z\r\n")
	require.Contains(t, ics, "DTEND:20251012T170000Z\r\n")
	require.Contains(t, ics, `SUMMARY:Tournoi 3 Bandes\, R2`)
	require.Contains(t, ics, `LOCATION:Salle de Lyon\; entrée B`)
	require.NotContains(t, ics, "DESCRIPTION:")

	// Every line must be CRLF-terminated.
	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		require.NotContains(t, line, "\n")
	}
}

func TestEscapeICS(t *testing.T) {
	require.Equal(t, `a\\b\;c\,d\ne`, escapeICS("a\\b;c,d\ne"))
}

func TestConvocationUID(t *testing.T) {
	require.Equal(t, "tournament-7@liguebillard", convocationUID(7))
}
