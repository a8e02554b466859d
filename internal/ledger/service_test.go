package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"spendbook/internal/kv/memory"
	"spendbook/internal/ledger"
)

func newService(t *testing.T) (*ledger.Service, *memory.Store) {
	t.Helper()

	kv := memory.New()
	svc := ledger.NewService(kv)
	require.NoError(t, svc.Initialize(context.Background()))

	return svc, kv
}

func addExpense(t *testing.T, svc *ledger.Service, title string, cents int64, category ledger.Category) *ledger.Expense {
	t.Helper()

	e, err := svc.AddExpense(context.Background(), ledger.CreateParams{
		Title:    title,
		Amount:   cents,
		Category: category,
	})
	require.NoError(t, err)

	return e
}

func TestService_Initialize_EmptyStore(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	names, err := svc.ListAccountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.DefaultAccount}, names)

	current, err := svc.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultAccount, current)

	total, err := svc.TotalFor(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestService_Initialize_Idempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)

	require.NoError(t, svc.Initialize(ctx))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestService_Initialize_HealsDanglingSelection(t *testing.T) {
	svc, kv := newService(t)
	ctx := context.Background()

	// Simulate a selection persisted by an older run whose account entry is
	// gone.
	require.NoError(t, kv.Put(ctx, "current_account", "Ghost"))

	require.NoError(t, svc.Initialize(ctx))

	names, err := svc.ListAccountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.DefaultAccount, "Ghost"}, names)

	current, err := svc.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ghost", current)
}

func TestService_AddExpense_OrderAndTotals(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Bus", expenses[0].Title)
	assert.Equal(t, "Coffee", expenses[1].Title)

	total, err := svc.TotalFor(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(650), total)

	totals, err := svc.CategoryTotals(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, map[ledger.Category]int64{
		ledger.CategoryFood:   450,
		ledger.CategoryTravel: 200,
	}, totals)
}

func TestService_AddExpense_AssignsIDAndTimestamp(t *testing.T) {
	svc, _ := newService(t)

	e := addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	assert.NotEmpty(t, e.ID)
	assert.WithinDuration(t, time.Now(), e.CreatedAt, time.Minute)

	// A read must return exactly what AddExpense reported.
	got, err := svc.GetExpense(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Amount, got.Amount)
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))
}

func TestService_AddExpense_Validation(t *testing.T) {
	type testCase struct {
		name   string
		params ledger.CreateParams
	}

	tests := []testCase{
		{
			name:   "EmptyTitle",
			params: ledger.CreateParams{Title: "  ", Amount: 100, Category: ledger.CategoryFood},
		},
		{
			name:   "ZeroAmount",
			params: ledger.CreateParams{Title: "Coffee", Amount: 0, Category: ledger.CategoryFood},
		},
		{
			name:   "NegativeAmount",
			params: ledger.CreateParams{Title: "Coffee", Amount: -5, Category: ledger.CategoryFood},
		},
		{
			name:   "EmptyCategory",
			params: ledger.CreateParams{Title: "Coffee", Amount: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, kv := newService(t)

			before := kv.Len()

			_, err := svc.AddExpense(context.Background(), tt.params)
			assert.ErrorIs(t, err, ledger.ErrInvalidArgument)

			// Rejected before any write.
			assert.Equal(t, before, kv.Len())
		})
	}
}

func TestService_AccountsAreDisjoint(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	created, err := svc.CreateAccount(ctx, "Trip")
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.SwitchAccount(ctx, "Trip"))
	addExpense(t, svc, "Hotel", 10000, ledger.CategoryBills)

	require.NoError(t, svc.SwitchAccount(ctx, ledger.DefaultAccount))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Bus", expenses[0].Title)
	assert.Equal(t, "Coffee", expenses[1].Title)

	tripTotal, err := svc.TotalFor(ctx, "Trip")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), tripTotal)
}

func TestService_CreateAccount_Idempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, "X")
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.SwitchAccount(ctx, "X"))
	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)

	created, err = svc.CreateAccount(ctx, "X")
	require.NoError(t, err)
	assert.False(t, created)

	// The second create must not have reset the expense list.
	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)

	names, err := svc.ListAccountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.DefaultAccount, "X"}, names)
}

func TestService_SwitchAccount_CreatesMissing(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SwitchAccount(ctx, "Fresh"))

	current, err := svc.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", current)

	names, err := svc.ListAccountNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "Fresh")
}

func TestService_SwitchAccount_EmptyName(t *testing.T) {
	svc, _ := newService(t)

	err := svc.SwitchAccount(context.Background(), "")
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
}

func TestService_RemoveExpense(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	coffee := addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	bus := addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	// Front of the list is the most recent add.
	require.NoError(t, svc.RemoveExpense(ctx, 0))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Coffee", expenses[0].Title)

	total, err := svc.TotalFor(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(450), total)

	// The removed record must be gone from the table, not just the list.
	_, err = svc.GetExpense(ctx, bus.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = svc.GetExpense(ctx, coffee.ID)
	assert.NoError(t, err)
}

func TestService_RemoveExpense_OutOfRange(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)

	require.NoError(t, svc.RemoveExpense(ctx, 99))
	require.NoError(t, svc.RemoveExpense(ctx, -1))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestService_RemoveExpenseByID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	coffee := addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	require.NoError(t, svc.RemoveExpenseByID(ctx, coffee.ID))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Bus", expenses[0].Title)

	err = svc.RemoveExpenseByID(ctx, coffee.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_RemoveExpenseByID_OtherAccountNotVisible(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	coffee := addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)

	require.NoError(t, svc.SwitchAccount(ctx, "Trip"))

	// The id exists but belongs to Default, which is no longer current.
	err := svc.RemoveExpenseByID(ctx, coffee.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = svc.GetExpense(ctx, coffee.ID)
	assert.NoError(t, err)
}

func TestService_DeleteAllExpenses(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	coffee := addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	bus := addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	require.NoError(t, svc.DeleteAllExpenses(ctx, ledger.DefaultAccount))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	for _, id := range []string{coffee.ID, bus.ID} {
		_, err := svc.GetExpense(ctx, id)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	}

	// No-op on an already-empty and on an absent account.
	require.NoError(t, svc.DeleteAllExpenses(ctx, ledger.DefaultAccount))
	require.NoError(t, svc.DeleteAllExpenses(ctx, "Nope"))
}

func TestService_DeleteAccount_CascadesRecords(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	require.NoError(t, svc.SwitchAccount(ctx, "Trip"))
	hotel := addExpense(t, svc, "Hotel", 10000, ledger.CategoryBills)
	require.NoError(t, svc.SwitchAccount(ctx, ledger.DefaultAccount))

	require.NoError(t, svc.DeleteAccount(ctx, "Trip"))

	names, err := svc.ListAccountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.DefaultAccount}, names)

	_, err = svc.GetExpense(ctx, hotel.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// Current account untouched.
	current, err := svc.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultAccount, current)

	total, err := svc.TotalFor(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(650), total)
}

func TestService_DeleteAccount_CurrentFailsOverToDefault(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SwitchAccount(ctx, "Trip"))
	addExpense(t, svc, "Hotel", 10000, ledger.CategoryBills)

	require.NoError(t, svc.DeleteAccount(ctx, "Trip"))

	current, err := svc.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultAccount, current)

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestService_DeleteAccount_DefaultIndestructible(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)

	require.NoError(t, svc.DeleteAccount(ctx, ledger.DefaultAccount))

	names, err := svc.ListAccountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.DefaultAccount}, names)

	total, err := svc.TotalFor(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(450), total)
}

func TestService_DeleteAccount_AbsentIsNoop(t *testing.T) {
	svc, _ := newService(t)

	require.NoError(t, svc.DeleteAccount(context.Background(), "Nope"))
}

func TestService_TotalFor_AbsentAccount(t *testing.T) {
	svc, _ := newService(t)

	total, err := svc.TotalFor(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestService_CurrentExpenses_SkipsDanglingAndCorrupt(t *testing.T) {
	svc, kv := newService(t)
	ctx := context.Background()

	coffee := addExpense(t, svc, "Coffee", 450, ledger.CategoryFood)
	bus := addExpense(t, svc, "Bus", 200, ledger.CategoryTravel)

	// Simulate a crash leftover: the record vanished while the list entry
	// stayed behind.
	require.NoError(t, kv.Delete(ctx, "expense:"+bus.ID))

	// And a record that fails the schema.
	require.NoError(t, kv.Put(ctx, "expense:"+coffee.ID, `{"title":"","amount":0}`))

	expenses, err := svc.CurrentExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	// Totals follow the same resolvable-records rule.
	total, err := svc.TotalFor(ctx, ledger.DefaultAccount)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestService_Initialize_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	kv := ledger.NewMockKV(ctrl)
	kv.EXPECT().
		Get(gomock.Any(), "account:Default").
		Return("", false, errors.New("disk gone"))

	svc := ledger.NewService(kv)

	err := svc.Initialize(context.Background())
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)
}

func TestService_AddExpense_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	kv := ledger.NewMockKV(ctrl)
	kv.EXPECT().
		Get(gomock.Any(), "current_account").
		Return("Default", true, nil)
	kv.EXPECT().
		Put(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("disk gone"))

	svc := ledger.NewService(kv)

	_, err := svc.AddExpense(context.Background(), ledger.CreateParams{
		Title:    "Coffee",
		Amount:   450,
		Category: ledger.CategoryFood,
	})
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)
}

func TestService_ListAccountNames_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	kv := ledger.NewMockKV(ctrl)
	kv.EXPECT().
		Keys(gomock.Any()).
		Return(nil, errors.New("disk gone"))

	svc := ledger.NewService(kv)

	_, err := svc.ListAccountNames(context.Background())
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)
}
