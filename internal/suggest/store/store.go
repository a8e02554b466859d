// Package store keeps title-pattern to category mappings in the same
// key-value space as the ledger, under suggest:<pattern> keys.
package store

import (
	"context"
	"fmt"
	"strings"

	"spendbook/internal/ledger"
)

const keyPrefix = "suggest:"

type Store struct {
	kv ledger.KV
}

func New(kv ledger.KV) *Store {
	return &Store{kv: kv}
}

// FindMatch returns the category of the longest stored pattern contained
// case-insensitively in the title, or "" when no pattern matches.
func (s *Store) FindMatch(ctx context.Context, title string) (ledger.Category, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return "", fmt.Errorf("listing mappings: %w", err)
	}

	haystack := strings.ToLower(title)

	var bestKey string

	bestLen := 0

	for _, k := range keys {
		pattern, ok := strings.CutPrefix(k, keyPrefix)
		if !ok {
			continue
		}

		if len(pattern) > bestLen && strings.Contains(haystack, strings.ToLower(pattern)) {
			bestKey = k
			bestLen = len(pattern)
		}
	}

	if bestKey == "" {
		return "", nil
	}

	category, ok, err := s.kv.Get(ctx, bestKey)
	if err != nil {
		return "", fmt.Errorf("loading mapping: %w", err)
	}

	if !ok {
		return "", nil
	}

	return ledger.Category(category), nil
}

func (s *Store) CreateMapping(ctx context.Context, pattern string, category ledger.Category) error {
	if err := s.kv.Put(ctx, keyPrefix+pattern, string(category)); err != nil {
		return fmt.Errorf("storing mapping: %w", err)
	}

	return nil
}
