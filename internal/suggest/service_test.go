package suggest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbook/internal/kv/memory"
	"spendbook/internal/ledger"
	"spendbook/internal/suggest"
	"spendbook/internal/suggest/store"
)

func newService(t *testing.T) *suggest.Service {
	t.Helper()

	return suggest.NewService(store.New(memory.New()))
}

func TestService_SuggestAndLearn(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	category, err := svc.Suggest(ctx, "Morning coffee")
	require.NoError(t, err)
	assert.Empty(t, category)

	require.NoError(t, svc.Learn(ctx, "coffee", ledger.CategoryFood))

	category, err = svc.Suggest(ctx, "Morning Coffee downtown")
	require.NoError(t, err)
	assert.Equal(t, ledger.CategoryFood, category)

	// No match for unrelated titles.
	category, err = svc.Suggest(ctx, "Taxi")
	require.NoError(t, err)
	assert.Empty(t, category)
}

func TestService_Suggest_LongestPatternWins(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Learn(ctx, "air", ledger.CategoryOthers))
	require.NoError(t, svc.Learn(ctx, "airline ticket", ledger.CategoryTravel))

	category, err := svc.Suggest(ctx, "Cheap airline ticket to Porto")
	require.NoError(t, err)
	assert.Equal(t, ledger.CategoryTravel, category)
}

func TestService_Learn_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	assert.Error(t, svc.Learn(ctx, "  ", ledger.CategoryFood))
	assert.Error(t, svc.Learn(ctx, "coffee", ""))
}
