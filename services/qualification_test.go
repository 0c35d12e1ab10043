package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQualificationRuleQualifiedCount(t *testing.T) {
	rule := DefaultQualificationRule()

	tests := []struct {
		name        string
		rankedCount int
		want        int
	}{
		{"empty field", 0, 4},
		{"small field", 5, 4},
		{"just under threshold", 8, 4},
		{"at threshold", 9, 6},
		{"large field", 20, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rule.QualifiedCount(tt.rankedCount))
		})
	}
}

func TestQualificationRuleQualifies(t *testing.T) {
	rule := DefaultQualificationRule()

	// 8 players: top 4 qualify.
	require.True(t, rule.Qualifies(1, 8))
	require.True(t, rule.Qualifies(4, 8))
	require.False(t, rule.Qualifies(5, 8))

	// 12 players: top 6 qualify.
	require.True(t, rule.Qualifies(6, 12))
	require.False(t, rule.Qualifies(7, 12))
}

func TestQualificationRuleCustomThresholds(t *testing.T) {
	rule := QualificationRule{Threshold: 12, Small: 3, Large: 8}

	require.Equal(t, 3, rule.QualifiedCount(11))
	require.Equal(t, 8, rule.QualifiedCount(12))
}
