package db

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.GetUserID(ctx, "42")
	require.NoError(t, err)
	assert.False(t, found)

	id, err := s.CreateUser(ctx, "Ada", "42")
	require.NoError(t, err)

	again, err := s.CreateUser(ctx, "Ada", "42")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, found, err := s.GetUserID(ctx, "42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)
}

func TestMemoryStoreDeleteMostRecentByDate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(10), day(1), models.Food))
	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(5), day(3), models.Sport))
	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(7), day(2), models.Misc))

	deleted, err := s.DeleteMostRecentExpense(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, models.Sport, deleted.Category)
	assert.True(t, deleted.Amount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, day(3), deleted.Date)

	rest, err := s.QueryExpenses(ctx, 1, 2026, time.October)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestMemoryStoreDeleteMostRecentTieBreaksOnInsertion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(1), day(5), models.Food))
	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(2), day(5), models.Shopping))
	require.NoError(t, s.InsertExpense(ctx, 2, decimal.NewFromInt(3), day(9), models.Sport))

	deleted, err := s.DeleteMostRecentExpense(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, models.Shopping, deleted.Category)
}

func TestMemoryStoreDeleteMostRecentEmpty(t *testing.T) {
	s := NewMemoryStore()

	deleted, err := s.DeleteMostRecentExpense(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestMemoryStoreQueryExpensesFiltersMonthAndUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(1), day(1), models.Food))
	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(2), time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), models.Food))
	require.NoError(t, s.InsertExpense(ctx, 1, decimal.NewFromInt(3), time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), models.Food))
	require.NoError(t, s.InsertExpense(ctx, 2, decimal.NewFromInt(4), day(1), models.Food))

	got, err := s.QueryExpenses(ctx, 1, 2026, time.October)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(1)))
}
