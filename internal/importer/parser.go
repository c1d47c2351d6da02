package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Parser reads ledger CSV exports. It detects the file encoding, sniffs the
// delimiter and picks the profile whose columns appear in the header.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Line, error) {
	utf8r, charset, err := toUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	header, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(string(header))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumns)
	}

	cols := indexHeader(rows[0])

	profile := detectProfile(cols)
	if profile == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing(&profiles[0], cols), ", "))
	}

	slog.Debug("parsing ledger csv", "profile", profile.Name, "charset", charset, "delimiter", string(reader.Comma))

	return parseRows(profile, cols, rows[1:])
}

// sniffDelimiter picks the most frequent of ";", "," and tab on the first
// line, preferring ";" on ties.
func sniffDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")

	best, bestCount := ';', strings.Count(first, ";")

	for _, d := range []rune{'\t', ','} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}

type colIndex map[string]int

func indexHeader(row []string) colIndex {
	cols := make(colIndex)

	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name != "" {
			cols[name] = i
		}
	}

	return cols
}

func detectProfile(cols colIndex) *Profile {
	for i := range profiles {
		if len(missing(&profiles[i], cols)) == 0 {
			return &profiles[i]
		}
	}

	return nil
}

func missing(p *Profile, cols colIndex) []string {
	var out []string

	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			out = append(out, name)
		}
	}

	return out
}

func parseRows(p *Profile, cols colIndex, rows [][]string) ([]Line, error) {
	var lines []Line

	for i, row := range rows {
		lineNum := i + 2 // 1-based, after the header

		if blank(row) {
			continue
		}

		date, err := parseDate(p, cellValue(row, cols[p.DateCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		accnum := cellValue(row, cols[p.AccNumCol])

		acclib := cellValue(row, cols[p.AccLibCol])
		if acclib == "" {
			acclib = accnum
		}

		lines = append(lines, Line{
			Number:   lineNum,
			Journal:  cellValue(row, cols[p.JournalCol]),
			PieceRef: cellValue(row, cols[p.PieceRefCol]),
			Date:     date,
			AccNum:   accnum,
			AccLib:   acclib,
			Lib:      cellValue(row, cols[p.LibCol]),
			Debit:    cellValue(row, cols[p.DebitCol]),
			Credit:   cellValue(row, cols[p.CreditCol]),
		})
	}

	return lines, nil
}

func parseDate(p *Profile, s string) (string, error) {
	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}

	return "", fmt.Errorf("invalid date %q", s)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
