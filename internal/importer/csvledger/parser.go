package csvledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "spendbook/internal/encoding"
	"spendbook/internal/ledger"
)

const (
	colTitle    = "title"
	colAmount   = "amount"
	colCategory = "category"
	colDate     = "date"
)

var dateLayouts = []string{
	time.RFC3339,
	time.DateOnly,
	"02/01/2006",
}

// Parser reads CSV exports of the expense-tracking apps and produces expense
// params. The header row is located by matching column names
// case-insensitively; title and amount are required, category and date are
// optional.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.CreateParams, error) {
	utf8r, err := enc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = detectComma(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx := detectHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no header row found: expected title and amount columns")
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

// detectComma picks the separator by counting candidates on the first line.
func detectComma(s string) rune {
	line, _, _ := strings.Cut(s, "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}

	return ','
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func detectHeader(rows [][]string) (colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		_, hasTitle := cols[colTitle]

		_, hasAmount := cols[colAmount]
		if hasTitle && hasAmount {
			return cols, rowIdx
		}
	}

	return nil, 0
}

func parseRows(cols colIndex, rows [][]string, offset int) ([]ledger.CreateParams, error) {
	var params []ledger.CreateParams

	for i, row := range rows {
		if isBlank(row) {
			continue
		}

		title := strings.TrimSpace(cell(row, cols, colTitle))
		if title == "" {
			return nil, fmt.Errorf("row %d: empty title", offset+i+1)
		}

		amount, err := parseAmount(cell(row, cols, colAmount))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q: %w", offset+i+1, cell(row, cols, colAmount), err)
		}

		if amount <= 0 {
			return nil, fmt.Errorf("row %d: amount must be positive", offset+i+1)
		}

		p := ledger.CreateParams{
			Title:    title,
			Amount:   amount,
			Category: ledger.Category(strings.TrimSpace(cell(row, cols, colCategory))),
		}

		if raw := strings.TrimSpace(cell(row, cols, colDate)); raw != "" {
			at, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid date %q", offset+i+1, raw)
			}

			p.CreatedAt = at
		}

		params = append(params, p)
	}

	return params, nil
}

func cell(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return row[idx]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format")
}
