package services

import (
	"fmt"
	"time"
)

// CurrentSeason returns the competitive season containing t, written
// "2024-2025". Seasons roll over on September 1st.
func CurrentSeason(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.September {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}
