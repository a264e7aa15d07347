package db

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// MemoryStore is an in-process store with the same ordering rules as PostgresStore.
// Useful for tests and for running the bot without a database.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	expenses []models.Expense
	nextUser int64
	nextExp  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.User)}
}

func (s *MemoryStore) GetUserID(_ context.Context, chatID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[chatID]
	return u.ID, ok, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, displayName, chatID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[chatID]; ok {
		return u.ID, nil
	}
	s.nextUser++
	s.users[chatID] = models.User{
		ID:        s.nextUser,
		UserName:  displayName,
		ChatID:    chatID,
		CreatedAt: time.Now(),
	}
	return s.nextUser, nil
}

func (s *MemoryStore) InsertExpense(_ context.Context, userID int64, amount decimal.Decimal, date time.Time, category models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextExp++
	s.expenses = append(s.expenses, models.Expense{
		ID:       s.nextExp,
		UserID:   userID,
		Amount:   amount,
		Category: category,
		Date:     models.DateOnly(date),
	})
	return nil
}

func (s *MemoryStore) QueryExpenses(_ context.Context, userID int64, year int, month time.Month) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteMostRecentExpense(_ context.Context, userID int64) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if idx < 0 || newer(e, s.expenses[idx]) {
			idx = i
		}
	}
	if idx < 0 {
		return nil, nil
	}

	deleted := s.expenses[idx]
	s.expenses = append(s.expenses[:idx], s.expenses[idx+1:]...)
	return &deleted, nil
}

// newer orders by date, then by insertion sequence
func newer(a, b models.Expense) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}
