package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// Store is the persistence collaborator the ledger is built on.
type Store interface {
	GetUserID(ctx context.Context, chatID string) (userID int64, found bool, err error)
	CreateUser(ctx context.Context, displayName, chatID string) (int64, error)
	InsertExpense(ctx context.Context, userID int64, amount decimal.Decimal, date time.Time, category models.Category) error
	QueryExpenses(ctx context.Context, userID int64, year int, month time.Month) ([]models.Expense, error)
	// DeleteMostRecentExpense returns nil when the user has no expenses.
	DeleteMostRecentExpense(ctx context.Context, userID int64) (*models.Expense, error)
}

// MaxAmount is the largest amount the expenses table holds (NUMERIC(12,2)).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Ledger validates and records expenses on top of a Store
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// EnsureUser returns the internal id for chatID, creating the user on first contact.
func (l *Ledger) EnsureUser(ctx context.Context, chatID, displayName string) (userID int64, created bool, err error) {
	userID, found, err := l.store.GetUserID(ctx, chatID)
	if err != nil {
		return 0, false, persistenceError("get user", err)
	}
	if found {
		return userID, false, nil
	}
	userID, err = l.store.CreateUser(ctx, displayName, chatID)
	if err != nil {
		return 0, false, persistenceError("create user", err)
	}
	return userID, true, nil
}

// AddExpense appends one record.
func (l *Ledger) AddExpense(ctx context.Context, userID int64, amount decimal.Decimal, date time.Time, category models.Category) error {
	if !amount.IsPositive() || amount.GreaterThan(MaxAmount) || !category.Valid() {
		return ErrInvalidExpense
	}
	if err := l.store.InsertExpense(ctx, userID, amount, models.DateOnly(date), category); err != nil {
		return persistenceError("insert expense", err)
	}
	return nil
}

// GetExpenses returns the user's records dated within year/month.
func (l *Ledger) GetExpenses(ctx context.Context, userID int64, year int, month time.Month) ([]models.Expense, error) {
	expenses, err := l.store.QueryExpenses(ctx, userID, year, month)
	if err != nil {
		return nil, persistenceError("query expenses", err)
	}
	return expenses, nil
}

// DeleteLastExpense removes the record with the latest date, newest insertion first
// on ties, across all of the user's history.
func (l *Ledger) DeleteLastExpense(ctx context.Context, userID int64) (models.Expense, error) {
	deleted, err := l.store.DeleteMostRecentExpense(ctx, userID)
	if err != nil {
		return models.Expense{}, persistenceError("delete last expense", err)
	}
	if deleted == nil {
		return models.Expense{}, ErrNoExpenseToUndo
	}
	return *deleted, nil
}
