package ledger

import (
	"context"
	"time"
)

// ImportResult reports the outcome of a batch import.
type ImportResult struct {
	Imported  []*Expense
	New       []CreateParams
	Conflicts []Conflict
}

// Conflict pairs an incoming row with the already-stored expense it collides
// with.
type Conflict struct {
	Incoming CreateParams
	Existing *Expense
}

type dupKey struct {
	Title    string
	Amount   int64
	Category Category
	Day      string
}

func dupKeyFor(title string, amount int64, category Category, at time.Time) dupKey {
	return dupKey{
		Title:    title,
		Amount:   amount,
		Category: category,
		Day:      at.UTC().Format(time.DateOnly),
	}
}

// ImportBatch adds the given rows to the current account unless any of them
// duplicates an expense the account already holds (same title, amount,
// category and calendar day). When conflicts exist nothing is written and the
// result carries the conflict pairs plus the rows that were still new, so the
// caller can review and re-submit via CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for _, p := range params {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.currentName(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.resolveAccount(ctx, name)
	if err != nil {
		return nil, err
	}

	lookup := make(map[dupKey]*Expense, len(existing))
	for _, e := range existing {
		lookup[dupKeyFor(e.Title, e.Amount, e.Category, e.CreatedAt)] = e
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		at := p.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}

		found, ok := lookup[dupKeyFor(p.Title, p.Amount, p.Category, at)]
		if ok {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: found})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	imported, err := s.addAllLocked(ctx, name, newParams)
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: imported}, nil
}

// CreateBatch adds all rows to the current account without duplicate
// checking. Used to confirm an import after conflicts were reviewed.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Expense, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for _, p := range params {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.currentName(ctx)
	if err != nil {
		return nil, err
	}

	return s.addAllLocked(ctx, name, params)
}

func (s *Service) addAllLocked(ctx context.Context, account string, params []CreateParams) ([]*Expense, error) {
	expenses := make([]*Expense, 0, len(params))

	for _, p := range params {
		e, err := s.addLocked(ctx, account, p)
		if err != nil {
			return nil, err
		}

		expenses = append(expenses, e)
	}

	return expenses, nil
}
