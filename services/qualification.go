package services

// QualificationRule decides how many top-ranked players of a category reach
// the finale. Small fields: fewer than Threshold ranked players → Small
// qualify, otherwise Large. The same rule gates the results-email message,
// the finale convocation list and the relance eligibility check, so it lives
// in exactly one place.
type QualificationRule struct {
	Threshold int
	Small     int
	Large     int
}

// DefaultQualificationRule returns the federation defaults: fields of fewer
// than 9 players send 4 to the finale, larger fields send 6.
func DefaultQualificationRule() QualificationRule {
	return QualificationRule{Threshold: 9, Small: 4, Large: 6}
}

// QualifiedCount returns how many players qualify out of rankedCount.
func (r QualificationRule) QualifiedCount(rankedCount int) int {
	if rankedCount < r.Threshold {
		return r.Small
	}
	return r.Large
}

// Qualifies reports whether the player at rankPosition (1-based) qualifies
// for the finale given the field size.
func (r QualificationRule) Qualifies(rankPosition, rankedCount int) bool {
	return rankPosition <= r.QualifiedCount(rankedCount)
}
