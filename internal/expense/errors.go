package expense

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPendingState means a category was chosen with nothing waiting for it.
	ErrNoPendingState = errors.New("no pending amount")
	// ErrNoExpenseToUndo means the user has no records at all.
	ErrNoExpenseToUndo = errors.New("no expense to undo")
	// ErrInvalidExpense means the amount is not positive or the category is outside the enumeration.
	ErrInvalidExpense = errors.New("invalid expense")
	// ErrPersistence wraps any storage-layer fault.
	ErrPersistence = errors.New("persistence failure")
)

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
