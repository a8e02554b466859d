package suggest

import (
	"context"
	"fmt"
	"strings"

	"spendbook/internal/ledger"
)

type Repository interface {
	FindMatch(ctx context.Context, title string) (ledger.Category, error)
	CreateMapping(ctx context.Context, pattern string, category ledger.Category) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a category for the given expense title.
// Returns empty string if no mapping applies.
func (s *Service) Suggest(ctx context.Context, title string) (ledger.Category, error) {
	return s.repo.FindMatch(ctx, title)
}

// Learn remembers a new mapping between a title pattern and a category.
func (s *Service) Learn(ctx context.Context, pattern string, category ledger.Category) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("pattern must not be empty")
	}

	if category == "" {
		return fmt.Errorf("category must not be empty")
	}

	return s.repo.CreateMapping(ctx, pattern, category)
}
