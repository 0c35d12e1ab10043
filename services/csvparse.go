package services

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// The federation's results export is a fixed-column, semicolon-delimited
// file. These positions are a contract with the external software and must
// not move.
const (
	colLicence     = 1
	colPlayerName  = 2
	colMatchPoints = 4
	colMoyenne     = 6
	colReprises    = 8
	colSerie       = 9
	colPoints      = 12

	minResultColumns = 13
)

// fixPseudoCSV repairs the export's pseudo-CSV quoting: each line may be
// wrapped in one extra pair of quotes with inner quotes doubled. The outer
// pair is stripped and doubled quotes collapsed so the result parses as
// regular quoted CSV.
func fixPseudoCSV(data []byte) string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) {
			line = line[1 : len(line)-1]
			line = strings.ReplaceAll(line, `""`, `"`)
			lines[i] = line
		}
	}
	return strings.Join(lines, "\n")
}

// ParseResultsCSV parses raw export bytes into rows of string fields. Rows
// with inconsistent column counts are kept as-is; header detection and
// short-row handling happen downstream.
func ParseResultsCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(fixPseudoCSV(data)))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	return reader.ReadAll()
}

// isHeaderRow detects the export's header lines, which carry the literal
// column captions "Classt" or "Licence".
func isHeaderRow(row []string) bool {
	for _, field := range row {
		if strings.Contains(field, "Classt") || strings.Contains(field, "Licence") {
			return true
		}
	}
	return false
}

// isBlankRow reports whether every field is empty or whitespace.
func isBlankRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// parsedRow is one usable result line extracted from the export.
type parsedRow struct {
	Licence     string
	PlayerName  string
	MatchPoints int
	Moyenne     float64
	Reprises    int
	Serie       int
	Points      int
}

// parseResultRow extracts a result from the fixed column positions. French
// exports use a decimal comma for the average, normalized here to a dot.
func parseResultRow(row []string) (*parsedRow, error) {
	if len(row) < minResultColumns {
		return nil, ErrValidationFailed
	}

	licence := strings.TrimSpace(row[colLicence])
	name := strings.TrimSpace(row[colPlayerName])
	if licence == "" || name == "" {
		return nil, ErrLicenceRequired
	}

	matchPoints, err := parseIntField(row[colMatchPoints])
	if err != nil {
		return nil, err
	}
	moyenne, err := parseFloatField(row[colMoyenne])
	if err != nil {
		return nil, err
	}
	reprises, err := parseIntField(row[colReprises])
	if err != nil {
		return nil, err
	}
	serie, err := parseIntField(row[colSerie])
	if err != nil {
		return nil, err
	}
	points, err := parseIntField(row[colPoints])
	if err != nil {
		return nil, err
	}

	return &parsedRow{
		Licence:     licence,
		PlayerName:  name,
		MatchPoints: matchPoints,
		Moyenne:     moyenne,
		Reprises:    reprises,
		Serie:       serie,
		Points:      points,
	}, nil
}

func parseIntField(field string) (int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}
	return strconv.Atoi(field)
}

func parseFloatField(field string) (float64, error) {
	field = strings.TrimSpace(strings.ReplaceAll(field, ",", "."))
	if field == "" {
		return 0, nil
	}
	return strconv.ParseFloat(field, 64)
}
