package importer

import (
	"io"

	"github.com/MrJamesThe3rd/daftar/internal/action"
)

type Format string

const (
	FormatLedgerCSV Format = "ledger_csv"
)

// Importer parses UTF-8 text into opening balance lines.
type Importer interface {
	Parse(r io.Reader) ([]action.OpeningBalance, error)
}
