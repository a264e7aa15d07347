package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// PostgresStore keeps users and expenses in PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// GetUserID looks a user up by external chat id
func (p *PostgresStore) GetUserID(ctx context.Context, chatID string) (int64, bool, error) {
	var userID int64
	err := p.pool.QueryRow(ctx, `SELECT user_id FROM users WHERE chat_id = $1`, chatID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error getting user for chat %s: %w", chatID, err)
	}
	return userID, true, nil
}

// CreateUser inserts a user, returning the existing id if the chat registered concurrently
func (p *PostgresStore) CreateUser(ctx context.Context, displayName, chatID string) (int64, error) {
	var userID int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO users (user_name, chat_id) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET chat_id = EXCLUDED.chat_id
		RETURNING user_id`, displayName, chatID).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("unable to create user for chat %s: %w", chatID, err)
	}
	return userID, nil
}

// InsertExpense appends one expense row
func (p *PostgresStore) InsertExpense(ctx context.Context, userID int64, amount decimal.Decimal, date time.Time, category models.Category) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO expenses (user_id, amount, date, category) VALUES ($1, $2::numeric, $3, $4)`,
		userID, amount.String(), date, string(category))
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// QueryExpenses returns the user's expenses dated within year/month, oldest first
func (p *PostgresStore) QueryExpenses(ctx context.Context, userID int64, year int, month time.Month) ([]models.Expense, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows, err := p.pool.Query(ctx, `
		SELECT expense_id, user_id, amount::text, date, category
		FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, expense_id`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying expenses: %w", err)
	}
	defer rows.Close()

	var results []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return results, nil
}

// DeleteMostRecentExpense removes the expense with the latest date, highest id first on ties
func (p *PostgresStore) DeleteMostRecentExpense(ctx context.Context, userID int64) (*models.Expense, error) {
	row := p.pool.QueryRow(ctx, `
		DELETE FROM expenses
		WHERE expense_id IN (
			SELECT expense_id FROM expenses WHERE user_id = $1
			ORDER BY date DESC, expense_id DESC LIMIT 1
		)
		RETURNING expense_id, user_id, amount::text, date, category`, userID)

	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanExpense(row pgx.Row) (models.Expense, error) {
	var (
		e        models.Expense
		amount   string
		category string
	)
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Date, &category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("error scanning expense row: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return e, fmt.Errorf("invalid amount %q in expense %d: %w", amount, e.ID, err)
	}
	e.Amount = d
	e.Category = models.Category(category)
	e.Date = models.DateOnly(e.Date)
	return e, nil
}
