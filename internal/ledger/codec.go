package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Persistence key space:
//
//	current_account  -> account name
//	account:<name>   -> JSON array of expense ids, most recent first
//	expense:<id>     -> JSON expenseRecord
const (
	keyCurrentAccount = "current_account"
	accountKeyPrefix  = "account:"
	expenseKeyPrefix  = "expense:"
)

func accountKey(name string) string { return accountKeyPrefix + name }

func expenseKey(id string) string { return expenseKeyPrefix + id }

func accountNameFromKey(key string) (string, bool) {
	return strings.CutPrefix(key, accountKeyPrefix)
}

// expenseRecord is the persisted form of an Expense. Field names and types
// are a fixed contract; records that do not match it are rejected on decode
// instead of being coerced.
type expenseRecord struct {
	Title     string `json:"title"`
	Amount    int64  `json:"amount"` // cents
	Category  string `json:"category"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
}

func encodeExpense(e *Expense) (string, error) {
	raw, err := json.Marshal(expenseRecord{
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  string(e.Category),
		CreatedAt: e.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("encoding expense %s: %w", e.ID, err)
	}

	return string(raw), nil
}

func decodeExpense(id, raw string) (*Expense, error) {
	var rec expenseRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decoding expense %s: %w", id, err)
	}

	if rec.Title == "" || rec.Category == "" || rec.Amount <= 0 {
		return nil, fmt.Errorf("decoding expense %s: record does not match schema", id)
	}

	return &Expense{
		ID:        id,
		Title:     rec.Title,
		Amount:    rec.Amount,
		Category:  Category(rec.Category),
		CreatedAt: time.UnixMilli(rec.CreatedAt),
	}, nil
}

func encodeIDList(ids []string) (string, error) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding id list: %w", err)
	}

	return string(raw), nil
}

func decodeIDList(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding id list: %w", err)
	}

	return ids, nil
}
