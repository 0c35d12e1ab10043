package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResultsCSV(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantRows int
		wantCell struct {
			row, col int
			value    string
		}
	}{
		{
			name:     "plain semicolon rows",
			data:     "1;0123456;DUPONT Jean;;24;;1,234;;50;7;;;120\n2;0234567;MARTIN Paul;;20;;0,987;;48;5;;;100",
			wantRows: 2,
			wantCell: struct {
				row, col int
				value    string
			}{0, 2, "DUPONT Jean"},
		},
		{
			name:     "outer quoted line with doubled inner quotes",
			data:     `"1;0123456;""DUPONT Jean"";;24;;1,234;;50;7;;;120"`,
			wantRows: 1,
			wantCell: struct {
				row, col int
				value    string
			}{0, 2, "DUPONT Jean"},
		},
		{
			name:     "windows line endings",
			data:     "1;0123456;DUPONT Jean;;24;;1,234;;50;7;;;120\r\n2;0234567;MARTIN Paul;;20;;0,987;;48;5;;;100\r\n",
			wantRows: 2,
			wantCell: struct {
				row, col int
				value    string
			}{1, 1, "0234567"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseResultsCSV([]byte(tt.data))
			require.NoError(t, err)

			nonBlank := make([][]string, 0, len(rows))
			for _, row := range rows {
				if !isBlankRow(row) {
					nonBlank = append(nonBlank, row)
				}
			}
			require.Len(t, nonBlank, tt.wantRows)
			require.Equal(t, tt.wantCell.value, nonBlank[tt.wantCell.row][tt.wantCell.col])
		})
	}
}

func TestIsHeaderRow(t *testing.T) {
	require.True(t, isHeaderRow([]string{"Classt", "Licence", "Nom"}))
	require.True(t, isHeaderRow([]string{"", "Licence", ""}))
	require.False(t, isHeaderRow([]string{"1", "0123456", "DUPONT Jean"}))
}

func TestIsBlankRow(t *testing.T) {
	require.True(t, isBlankRow([]string{"", "  ", "\t"}))
	require.False(t, isBlankRow([]string{"", "x", ""}))
}

func TestParseResultRow(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		want    *parsedRow
		wantErr error
	}{
		{
			name: "full row with decimal comma",
			row:  []string{"1", "0123456", "DUPONT Jean", "", "24", "", "1,234", "", "50", "7", "", "", "120"},
			want: &parsedRow{
				Licence:     "0123456",
				PlayerName:  "DUPONT Jean",
				MatchPoints: 24,
				Moyenne:     1.234,
				Reprises:    50,
				Serie:       7,
				Points:      120,
			},
		},
		{
			name: "empty numeric fields default to zero",
			row:  []string{"1", "0123456", "DUPONT Jean", "", "", "", "", "", "", "", "", "", ""},
			want: &parsedRow{Licence: "0123456", PlayerName: "DUPONT Jean"},
		},
		{
			name:    "short row",
			row:     []string{"1", "0123456", "DUPONT Jean", "", "24"},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "missing licence",
			row:     []string{"1", "  ", "DUPONT Jean", "", "24", "", "1,234", "", "50", "7", "", "", "120"},
			wantErr: ErrLicenceRequired,
		},
		{
			name:    "missing name",
			row:     []string{"1", "0123456", "", "", "24", "", "1,234", "", "50", "7", "", "", "120"},
			wantErr: ErrLicenceRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResultRow(tt.row)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseResultRowBadNumber(t *testing.T) {
	row := []string{"1", "0123456", "DUPONT Jean", "", "abc", "", "1,234", "", "50", "7", "", "", "120"}
	_, err := parseResultRow(row)
	require.Error(t, err)
}
