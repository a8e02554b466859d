package importer

import (
	"fmt"
	"io"

	"spendbook/internal/importer/csvledger"
	"spendbook/internal/ledger"
)

type Service struct {
	csvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: csvledger.NewParser(),
	}
}

func (s *Service) Import(source Source, r io.Reader) ([]ledger.CreateParams, error) {
	var imp Importer

	switch source {
	case SourceCSV:
		imp = s.csvImporter
	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}

	return imp.Parse(r)
}
