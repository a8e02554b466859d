package importer

import (
	"io"

	"spendbook/internal/ledger"
)

// Source identifies the file format being imported.
type Source string

const (
	SourceCSV Source = "csv"
)

type Importer interface {
	Parse(r io.Reader) ([]ledger.CreateParams, error)
}
