package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTournamentIsFinale(t *testing.T) {
	require.True(t, Tournament{TournamentNumber: FinaleNumber}.IsFinale())
	require.False(t, Tournament{TournamentNumber: 1}.IsFinale())
	require.False(t, Tournament{TournamentNumber: 3}.IsFinale())
}
