package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"spendbook/internal/ledger"
)

// Service writes an account's expenses as CSV, newest first, in the same
// column layout the importer accepts.
type Service struct {
	ledger *ledger.Service
}

func NewService(l *ledger.Service) *Service {
	return &Service{ledger: l}
}

// Export writes the named account's expenses to w and returns the number of
// exported rows.
func (s *Service) Export(ctx context.Context, accountName string, w io.Writer) (int, error) {
	expenses, err := s.ledger.AccountExpenses(ctx, accountName)
	if err != nil {
		return 0, fmt.Errorf("listing expenses: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"title", "amount", "category", "date"}); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range expenses {
		row := []string{
			e.Title,
			e.AmountString(),
			string(e.Category),
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(expenses), nil
}
