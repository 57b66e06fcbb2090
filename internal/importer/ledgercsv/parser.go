// Package ledgercsv reads opening balances from the spreadsheets shops kept
// before switching to the ledger. Headers may be Arabic or English.
package ledgercsv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

// Parser turns UTF-8 CSV into opening balance lines. Rows without a name
// or with a zero amount are skipped.
type Parser struct {
	// DefaultType applies when the file has no type column or the cell is empty.
	DefaultType entity.PersonType
}

func New() *Parser {
	return &Parser{DefaultType: entity.PersonCustomer}
}

func (p *Parser) Parse(r io.Reader) ([]action.OpeningBalance, error) {
	br := bufio.NewReader(r)

	reader := csv.NewReader(br)
	reader.Comma = sniffComma(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching ledger layout: expected a name column and an amount or debit/credit columns")
	}

	return p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffComma picks the delimiter that occurs most in the first line.
func sniffComma(br *bufio.Reader) rune {
	peek, _ := br.Peek(br.Size())

	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', strings.Count(line, ",")

	for _, c := range []rune{';', '\t', '،'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}

	return best
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\uFEFF")))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// index returns -1 for a column the file does not have.
func (c colIndex) index(name string) int {
	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]action.OpeningBalance, error) {
	var lines []action.OpeningBalance

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		name := cellValue(row, cols.index(prof.NameCol))
		if name == "" {
			continue
		}

		amount, balance, err := readAmount(prof, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if amount.IsZero() {
			continue
		}

		personType, err := p.personType(cellValue(row, cols.index(prof.TypeCol)))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		currency, err := readCurrency(cellValue(row, cols.index(prof.CurrencyCol)))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		lines = append(lines, action.OpeningBalance{
			PersonType:  personType,
			PersonName:  name,
			Amount:      amount,
			Currency:    currency,
			BalanceType: balance,
			Notes:       cellValue(row, cols.index(prof.NotesCol)),
		})
	}

	return lines, nil
}

// readAmount returns the absolute amount and the side it sits on.
func readAmount(prof *Profile, cols colIndex, row []string) (decimal.Decimal, entity.BalanceType, error) {
	if prof.AmountMode == amountSigned {
		s := cellValue(row, cols.index(prof.AmountCol))
		if s == "" {
			return decimal.Zero, "", nil
		}

		d, err := parseAmount(s)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("invalid amount %q", s)
		}

		if d.IsNegative() {
			return d.Abs(), entity.BalanceCredit, nil
		}

		return d, entity.BalanceDebit, nil
	}

	for _, side := range []struct {
		col     string
		balance entity.BalanceType
	}{
		{prof.DebitCol, entity.BalanceDebit},
		{prof.CreditCol, entity.BalanceCredit},
	} {
		s := cellValue(row, cols.index(side.col))
		if s == "" {
			continue
		}

		d, err := parseAmount(s)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("invalid %s amount %q", side.balance, s)
		}

		if !d.IsZero() {
			return d.Abs(), side.balance, nil
		}
	}

	return decimal.Zero, "", nil
}

func (p *Parser) personType(s string) (entity.PersonType, error) {
	if s == "" {
		return p.DefaultType, nil
	}

	t := entity.PersonType(action.Canonical(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown person type %q", s)
	}

	return t, nil
}

func readCurrency(s string) (entity.Currency, error) {
	if s == "" {
		return entity.CurrencyYER, nil
	}

	c := entity.Currency(strings.ToUpper(action.Canonical(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency %q", s)
	}

	return c, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
