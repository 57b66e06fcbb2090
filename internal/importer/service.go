package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	enc "github.com/MrJamesThe3rd/daftar/internal/encoding"
	"github.com/MrJamesThe3rd/daftar/internal/importer/ledgercsv"
)

type Service struct {
	ledgerCSV Importer
}

func NewService() *Service {
	return &Service{
		ledgerCSV: ledgercsv.New(),
	}
}

// Import decodes r from charset, or a detected charset when empty, and
// parses it with the importer for format.
func (s *Service) Import(format Format, charset string, r io.Reader) (*action.ImportOpeningBalances, error) {
	var importer Importer

	switch format {
	case FormatLedgerCSV, "":
		importer = s.ledgerCSV
	default:
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	var (
		text io.Reader
		err  error
	)

	if charset == "" {
		text, err = enc.NewUTF8Reader(r)
	} else {
		text, err = enc.NewReader(r, charset)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}

	lines, err := importer.Parse(text)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no balances found in upload")
	}

	return &action.ImportOpeningBalances{Lines: lines}, nil
}
