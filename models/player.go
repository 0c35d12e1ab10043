package models

import (
	"strings"
	"time"
)

// Player is identified by its federation licence, the natural key. Licences
// in CSV exports carry stray spaces, so every comparison goes through
// NormalizeLicence first.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Licence   string    `json:"licence" db:"licence"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Club      string    `json:"club" db:"club"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlaceholderClub is assigned to players created during import; the
// tournament export has no club column.
const PlaceholderClub = "A COMPLETER"

// NormalizeLicence strips all spaces from a licence string.
func NormalizeLicence(licence string) string {
	return strings.ReplaceAll(licence, " ", "")
}

// FullName returns the display form used in CSV exports: last name first.
func (p Player) FullName() string {
	return strings.TrimSpace(p.LastName + " " + p.FirstName)
}

// SplitCSVName splits an export display name ("LASTNAME Firstname ...") into
// its parts: first token is the last name, the remainder the first name. The
// split is heuristic, which is why imports require operator confirmation
// before unknown players are created.
func SplitCSVName(fullName string) (firstName, lastName string) {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "", ""
	}
	lastName = fields[0]
	firstName = strings.Join(fields[1:], " ")
	return firstName, lastName
}
