package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=kv_mock.go -package=ledger

// KV is the persistence collaborator supplied by the host application. Each
// call is individually durable once it returns, but there are no cross-key
// transactions; the service tolerates a crash between its two-step writes by
// skipping ids that no longer resolve on read.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Service is the sole authority over accounts, their expense-id lists and the
// expense-record table. After every operation no account references a missing
// record and no record is owned by two accounts.
type Service struct {
	kv KV

	// One lock serializes every operation. Accounts are few, and
	// DeleteAccount spans both an account's records and the current-account
	// pointer, so a single serialization point is the simplest safe scope.
	mu sync.Mutex
}

func NewService(kv KV) *Service {
	return &Service{kv: kv}
}

// CreateParams carries caller-supplied fields for a new expense.
type CreateParams struct {
	Title     string
	Amount    int64 // cents
	Category  Category
	CreatedAt time.Time // zero value means "now"
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
	}

	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}

	if p.Category == "" {
		return fmt.Errorf("%w: category must not be empty", ErrInvalidArgument)
	}

	return nil
}

func validAccountName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: account name must not be empty", ErrInvalidArgument)
	}

	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// Initialize loads or creates the Default account and the persisted
// current-account selection. A selection naming a non-existent account is
// healed by creating that account empty. Idempotent.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureAccount(ctx, DefaultAccount); err != nil {
		return err
	}

	cur, ok, err := s.kv.Get(ctx, keyCurrentAccount)
	if err != nil {
		return storageErr("loading current account", err)
	}

	if !ok || cur == "" {
		cur = DefaultAccount
		if err := s.kv.Put(ctx, keyCurrentAccount, cur); err != nil {
			return storageErr("persisting current account", err)
		}
	}

	return s.ensureAccount(ctx, cur)
}

// CurrentAccount returns the name of the currently selected account.
func (s *Service) CurrentAccount(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentName(ctx)
}

// CurrentExpenses resolves the current account's expense ids to full records,
// most recent first. Ids that no longer resolve, or whose records fail the
// schema, are skipped rather than failing the whole read.
func (s *Service) CurrentExpenses(ctx context.Context) ([]*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.currentName(ctx)
	if err != nil {
		return nil, err
	}

	return s.resolveAccount(ctx, name)
}

// AccountExpenses resolves the named account's expense ids to full records,
// most recent first, with the same skip-don't-crash tolerance as
// CurrentExpenses. An absent account yields an empty list.
func (s *Service) AccountExpenses(ctx context.Context, name string) ([]*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolveAccount(ctx, name)
}

// AddExpense assigns a new id, persists the record and prepends its id to the
// current account's list. The record is written first so a crash between the
// two writes leaves an invisible orphan, never a dangling id.
func (s *Service) AddExpense(ctx context.Context, params CreateParams) (*Expense, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.currentName(ctx)
	if err != nil {
		return nil, err
	}

	return s.addLocked(ctx, name, params)
}

// RemoveExpense deletes the expense at the given position of the current
// account's list (front = 0). An out-of-range index is a silent no-op,
// mirroring the reference behavior.
func (s *Service) RemoveExpense(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.currentName(ctx)
	if err != nil {
		return err
	}

	ids, _, err := s.idList(ctx, name)
	if err != nil {
		return err
	}

	if index < 0 || index >= len(ids) {
		return nil
	}

	return s.removeAtLocked(ctx, name, ids, index)
}

// RemoveExpenseByID deletes the identified expense from the current account.
// Unlike the index variant it is strict: an id the current account does not
// own yields ErrNotFound.
func (s *Service) RemoveExpenseByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.currentName(ctx)
	if err != nil {
		return err
	}

	ids, _, err := s.idList(ctx, name)
	if err != nil {
		return err
	}

	idx := slices.Index(ids, id)
	if idx < 0 {
		return fmt.Errorf("removing expense %s: %w", id, ErrNotFound)
	}

	return s.removeAtLocked(ctx, name, ids, idx)
}

// GetExpense resolves a single expense record by id.
func (s *Service) GetExpense(ctx context.Context, id string) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, expenseKey(id))
	if err != nil {
		return nil, storageErr("loading expense", err)
	}

	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}

	e, err := decodeExpense(id, raw)
	if err != nil {
		return nil, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}

	return e, nil
}

// DeleteAllExpenses removes every record owned by the named account and
// resets its list to empty. A no-op for an absent or already-empty account.
func (s *Service) DeleteAllExpenses(ctx context.Context, name string) error {
	if err := validAccountName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, exists, err := s.idList(ctx, name)
	if err != nil {
		return err
	}

	if !exists || len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if err := s.kv.Delete(ctx, expenseKey(id)); err != nil {
			return storageErr("deleting expense", err)
		}
	}

	return s.putIDList(ctx, name, []string{})
}

// SwitchAccount makes name the current account, creating it empty first if it
// does not exist yet. The selection is persisted before returning.
func (s *Service) SwitchAccount(ctx context.Context, name string) error {
	if err := validAccountName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureAccount(ctx, name); err != nil {
		return err
	}

	if err := s.kv.Put(ctx, keyCurrentAccount, name); err != nil {
		return storageErr("persisting current account", err)
	}

	return nil
}

// CreateAccount creates a new empty account. It reports false, without error,
// when the name is already taken.
func (s *Service) CreateAccount(ctx context.Context, name string) (bool, error) {
	if err := validAccountName(name); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists, err := s.idList(ctx, name)
	if err != nil {
		return false, err
	}

	if exists {
		return false, nil
	}

	if err := s.putIDList(ctx, name, []string{}); err != nil {
		return false, err
	}

	return true, nil
}

// DeleteAccount removes the account and every record it owns. Deleting the
// Default account is a silent no-op. If the deleted account was current, the
// selection fails over to Default within the same critical section.
func (s *Service) DeleteAccount(ctx context.Context, name string) error {
	if err := validAccountName(name); err != nil {
		return err
	}

	if name == DefaultAccount {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, exists, err := s.idList(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		return nil
	}

	for _, id := range ids {
		if err := s.kv.Delete(ctx, expenseKey(id)); err != nil {
			return storageErr("deleting expense", err)
		}
	}

	if err := s.kv.Delete(ctx, accountKey(name)); err != nil {
		return storageErr("deleting account", err)
	}

	cur, err := s.currentName(ctx)
	if err != nil {
		return err
	}

	if cur != name {
		return nil
	}

	if err := s.ensureAccount(ctx, DefaultAccount); err != nil {
		return err
	}

	if err := s.kv.Put(ctx, keyCurrentAccount, DefaultAccount); err != nil {
		return storageErr("persisting current account", err)
	}

	return nil
}

// TotalFor sums the amounts of the account's resolvable records, in cents.
// An absent account totals zero.
func (s *Service) TotalFor(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.resolveAccount(ctx, name)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range expenses {
		total += e.Amount
	}

	return total, nil
}

// CategoryTotals groups the account's resolvable records by category and sums
// amounts per group. Iteration order is unspecified; callers needing a stable
// display order must sort.
func (s *Service) CategoryTotals(ctx context.Context, name string) (map[Category]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.resolveAccount(ctx, name)
	if err != nil {
		return nil, err
	}

	totals := make(map[Category]int64, len(expenses))
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}

	return totals, nil
}

// ListAccountNames returns all known account names in ascending order.
func (s *Service) ListAccountNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, storageErr("listing accounts", err)
	}

	var names []string

	for _, k := range keys {
		if name, ok := accountNameFromKey(k); ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names, nil
}

func (s *Service) currentName(ctx context.Context) (string, error) {
	cur, ok, err := s.kv.Get(ctx, keyCurrentAccount)
	if err != nil {
		return "", storageErr("loading current account", err)
	}

	if !ok || cur == "" {
		return DefaultAccount, nil
	}

	return cur, nil
}

// idList returns the account's expense ids and whether the account exists.
func (s *Service) idList(ctx context.Context, name string) ([]string, bool, error) {
	raw, ok, err := s.kv.Get(ctx, accountKey(name))
	if err != nil {
		return nil, false, storageErr("loading account", err)
	}

	if !ok {
		return nil, false, nil
	}

	ids, err := decodeIDList(raw)
	if err != nil {
		return nil, true, storageErr("loading account", err)
	}

	return ids, true, nil
}

func (s *Service) putIDList(ctx context.Context, name string, ids []string) error {
	raw, err := encodeIDList(ids)
	if err != nil {
		return err
	}

	if err := s.kv.Put(ctx, accountKey(name), raw); err != nil {
		return storageErr("persisting account", err)
	}

	return nil
}

func (s *Service) ensureAccount(ctx context.Context, name string) error {
	_, exists, err := s.idList(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.putIDList(ctx, name, []string{})
}

func (s *Service) resolveAccount(ctx context.Context, name string) ([]*Expense, error) {
	ids, _, err := s.idList(ctx, name)
	if err != nil {
		return nil, err
	}

	expenses := make([]*Expense, 0, len(ids))

	for _, id := range ids {
		raw, ok, err := s.kv.Get(ctx, expenseKey(id))
		if err != nil {
			return nil, storageErr("loading expense", err)
		}

		if !ok {
			// Dangling id, possibly from a crash between the two-step
			// write. Skip instead of failing the read.
			continue
		}

		e, err := decodeExpense(id, raw)
		if err != nil {
			continue
		}

		expenses = append(expenses, e)
	}

	return expenses, nil
}

func (s *Service) addLocked(ctx context.Context, account string, params CreateParams) (*Expense, error) {
	created := params.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	e := &Expense{
		ID:       uuid.NewString(),
		Title:    params.Title,
		Amount:   params.Amount,
		Category: params.Category,
		// Normalized to millisecond precision so the returned record equals
		// what a later read decodes.
		CreatedAt: time.UnixMilli(created.UnixMilli()),
	}

	raw, err := encodeExpense(e)
	if err != nil {
		return nil, err
	}

	if err := s.kv.Put(ctx, expenseKey(e.ID), raw); err != nil {
		return nil, storageErr("persisting expense", err)
	}

	ids, _, err := s.idList(ctx, account)
	if err != nil {
		return nil, err
	}

	ids = append([]string{e.ID}, ids...)
	if err := s.putIDList(ctx, account, ids); err != nil {
		return nil, err
	}

	return e, nil
}

// removeAtLocked deletes the record first, then rewrites the list, per the
// remove ordering contract.
func (s *Service) removeAtLocked(ctx context.Context, account string, ids []string, idx int) error {
	if err := s.kv.Delete(ctx, expenseKey(ids[idx])); err != nil {
		return storageErr("deleting expense", err)
	}

	return s.putIDList(ctx, account, slices.Delete(slices.Clone(ids), idx, idx+1))
}
