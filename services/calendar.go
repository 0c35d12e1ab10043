package services

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEvent describes one tournament date for an .ics attachment joined
// to convocation emails.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	Duration    time.Duration
}

// BuildICS renders the event as a minimal iCalendar document.
func BuildICS(event CalendarEvent) string {
	start := event.Start.UTC()
	end := start.Add(event.Duration)

	var b strings.Builder
	writeICSLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeICSLine("BEGIN:VCALENDAR")
	writeICSLine("VERSION:2.0")
	writeICSLine("PRODID:-//Ligue de Billard//Federation Admin//FR")
	writeICSLine("METHOD:PUBLISH")
	writeICSLine("BEGIN:VEVENT")
	writeICSLine("UID:" + escapeICS(event.UID))
	writeICSLine("DTSTAMP:" + time.Now().UTC().Format(icsTimeLayout))
	writeICSLine("DTSTART:" + start.Format(icsTimeLayout))
	writeICSLine("DTEND:" + end.Format(icsTimeLayout))
	writeICSLine("SUMMARY:" + escapeICS(event.Summary))
	if event.Description != "" {
		writeICSLine("DESCRIPTION:" + escapeICS(event.Description))
	}
	if event.Location != "" {
		writeICSLine("LOCATION:" + escapeICS(event.Location))
	}
	writeICSLine("END:VEVENT")
	writeICSLine("END:VCALENDAR")

	return b.String()
}

const icsTimeLayout = "20060102T150405Z"

// escapeICS escapes the characters RFC 5545 treats specially in text values.
func escapeICS(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return replacer.Replace(value)
}

// convocationUID builds a stable event UID per tournament.
func convocationUID(tournamentID int) string {
	return fmt.Sprintf("tournament-%d@liguebillard", tournamentID)
}
