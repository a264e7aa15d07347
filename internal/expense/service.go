package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/metrics"
	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// User-facing texts
const (
	unrecognizedText = "Sorry, I didn't quite get that. Can you try again?"
	staleChoiceText  = "That choice is no longer open. Please send the amount again."
	nothingToUndo    = "There is nothing to undo."
	failureText      = "Something went wrong on my side. Please try again in a moment."
	cancelledText    = "Okay, I dropped the amount you sent."
	nothingToCancel  = "There was nothing to cancel."
	tooLargeText     = "That amount is too large to record."
)

// Reply is what a transport sends back to the chat. A non-empty Options list
// means the transport must render a category menu under Text.
type Reply struct {
	Text    string
	Options []models.CategoryOption
}

// Prompt reports whether the reply asks the user to pick a category
func (r Reply) Prompt() bool {
	return len(r.Options) > 0
}

// Service turns chat actions into ledger operations and reply texts.
//
// Every method returns a Reply that is safe to show. The error is non-nil only
// for persistence failures, which are logged here and answered with a generic text.
type Service struct {
	ledger  *Ledger
	pending *PendingStore
	logger  zerolog.Logger
	loc     *time.Location
	now     func() time.Time
	prefix  string
}

// Option configures a Service
type Option func(*Service)

// WithLocation sets the timezone that decides "today" and "this month".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCommandPrefix sets the command prefix used in help texts ("/" or "!").
func WithCommandPrefix(prefix string) Option {
	return func(s *Service) { s.prefix = prefix }
}

func NewService(store Store, pending *PendingStore, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		ledger:  NewLedger(store),
		pending: pending,
		logger:  logger.With().Str("component", "expense").Logger(),
		loc:     time.UTC,
		now:     time.Now,
		prefix:  "/",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	return models.DateOnly(s.now().In(s.loc))
}

func (s *Service) fail(op, chatID string, err error) (Reply, error) {
	kind := "internal"
	if errors.Is(err, ErrPersistence) {
		kind = "persistence"
	}
	metrics.ErrorsTotal.WithLabelValues(kind).Inc()
	s.logger.Error().Err(err).Str("op", op).Str("chat_id", chatID).Msg("expense operation failed")
	return Reply{Text: failureText}, err
}

// OnStart registers the chat on first contact and greets the user.
func (s *Service) OnStart(ctx context.Context, chatID, displayName string) (Reply, error) {
	userID, created, err := s.ledger.EnsureUser(ctx, chatID, displayName)
	if err != nil {
		return s.fail("start", chatID, err)
	}
	if created {
		s.logger.Info().Int64("user_id", userID).Str("chat_id", chatID).Msg("user registered")
	}
	_ = s.pending.WithUser(userID, func(ps PendingSlot) error {
		ps.Clear()
		return nil
	})

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "there"
	}
	return Reply{Text: fmt.Sprintf(
		"Hi %s! Tell me what you spent, like \"12.5 food\" or \"f 12.5\".\n"+
			"Send %shelp to see all categories and commands.", name, s.prefix)}, nil
}

// OnHelp lists commands and the category table.
func (s *Service) OnHelp() Reply {
	var b strings.Builder
	b.WriteString("Send an amount and a category, in any order: \"10 f\", \"lunch 12.5 food\".\n")
	b.WriteString("If you leave the category out I will ask for it.\n\n")
	b.WriteString("Categories:\n")
	for _, c := range models.Categories() {
		b.WriteString(fmt.Sprintf("- %s (%s)\n", c.Title(), c.Alias()))
	}
	b.WriteString("\nCommands:\n")
	b.WriteString(fmt.Sprintf("%sshow - spending this month\n", s.prefix))
	b.WriteString(fmt.Sprintf("%sundo - remove the last expense\n", s.prefix))
	b.WriteString(fmt.Sprintf("%scancel - forget an amount waiting for a category\n", s.prefix))
	b.WriteString(fmt.Sprintf("%shelp - this message", s.prefix))
	return Reply{Text: b.String()}
}

// OnShowExpenses builds the month-to-date report.
func (s *Service) OnShowExpenses(ctx context.Context, chatID string) (Reply, error) {
	userID, _, err := s.ledger.EnsureUser(ctx, chatID, "")
	if err != nil {
		return s.fail("show", chatID, err)
	}
	today := s.today()
	expenses, err := s.ledger.GetExpenses(ctx, userID, today.Year(), today.Month())
	if err != nil {
		return s.fail("show", chatID, err)
	}
	metrics.ReportsTotal.Inc()
	return Reply{Text: FormatMonthlySummary(expenses, today.Month())}, nil
}

// OnUndo removes the user's most recent expense.
func (s *Service) OnUndo(ctx context.Context, chatID string) (Reply, error) {
	userID, _, err := s.ledger.EnsureUser(ctx, chatID, "")
	if err != nil {
		return s.fail("undo", chatID, err)
	}
	deleted, err := s.ledger.DeleteLastExpense(ctx, userID)
	switch {
	case errors.Is(err, ErrNoExpenseToUndo):
		metrics.UndoTotal.WithLabelValues("empty").Inc()
		return Reply{Text: nothingToUndo}, nil
	case err != nil:
		return s.fail("undo", chatID, err)
	}
	metrics.UndoTotal.WithLabelValues("removed").Inc()
	s.logger.Info().Int64("user_id", userID).Str("amount", deleted.Amount.String()).
		Str("category", string(deleted.Category)).Msg("expense removed")
	return Reply{Text: fmt.Sprintf("Removed $%s on %s from %s.",
		FormatAmount(deleted.Amount), deleted.Category.Lower(), deleted.Date.Format("2006-01-02"))}, nil
}

// OnFreeTextMessage interprets text and either records it or asks for a category.
func (s *Service) OnFreeTextMessage(ctx context.Context, chatID, text string) (Reply, error) {
	result := Interpret(text)
	metrics.MessagesTotal.WithLabelValues(result.Kind.String()).Inc()
	if result.Kind == Unrecognized {
		return Reply{Text: unrecognizedText}, nil
	}
	if result.Amount.GreaterThan(MaxAmount) {
		return Reply{Text: tooLargeText}, nil
	}

	userID, _, err := s.ledger.EnsureUser(ctx, chatID, "")
	if err != nil {
		return s.fail("message", chatID, err)
	}

	var reply Reply
	err = s.pending.WithUser(userID, func(ps PendingSlot) error {
		if result.Kind == AmountOnly {
			ps.Set(result.Amount)
			reply = Reply{
				Text:    fmt.Sprintf("Got $%s. Which category was it?", FormatAmount(result.Amount)),
				Options: models.CategoryOptions(models.Categories()),
			}
			return nil
		}
		if err := s.record(ctx, userID, result.Amount, result.Category); err != nil {
			return err
		}
		reply = confirmation(result.Amount, result.Category)
		return nil
	})
	if err != nil {
		return s.fail("message", chatID, err)
	}
	return reply, nil
}

// OnCategoryChosen records the pending amount under category.
func (s *Service) OnCategoryChosen(ctx context.Context, chatID string, category models.Category) (Reply, error) {
	if !category.Valid() {
		metrics.CategoryChoicesTotal.WithLabelValues("stale").Inc()
		return Reply{Text: staleChoiceText}, nil
	}
	userID, _, err := s.ledger.EnsureUser(ctx, chatID, "")
	if err != nil {
		return s.fail("category", chatID, err)
	}

	var amount decimal.Decimal
	err = s.pending.WithUser(userID, func(ps PendingSlot) error {
		pending, err := ps.Take()
		if err != nil {
			return err
		}
		amount = pending.Amount
		if err := s.record(ctx, userID, amount, category); err != nil {
			if errors.Is(err, ErrPersistence) {
				// keep the amount so the user can press the button again
				ps.Restore(pending)
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrNoPendingState):
		metrics.CategoryChoicesTotal.WithLabelValues("stale").Inc()
		return Reply{Text: staleChoiceText}, nil
	case errors.Is(err, ErrInvalidExpense):
		metrics.CategoryChoicesTotal.WithLabelValues("invalid").Inc()
		return Reply{Text: tooLargeText}, nil
	case err != nil:
		return s.fail("category", chatID, err)
	}
	metrics.CategoryChoicesTotal.WithLabelValues("recorded").Inc()
	return confirmation(amount, category), nil
}

// OnCancel drops a pending amount, if any.
func (s *Service) OnCancel(ctx context.Context, chatID string) (Reply, error) {
	userID, _, err := s.ledger.EnsureUser(ctx, chatID, "")
	if err != nil {
		return s.fail("cancel", chatID, err)
	}
	var had bool
	_ = s.pending.WithUser(userID, func(ps PendingSlot) error {
		had = ps.Clear()
		return nil
	})
	if !had {
		return Reply{Text: nothingToCancel}, nil
	}
	return Reply{Text: cancelledText}, nil
}

func (s *Service) record(ctx context.Context, userID int64, amount decimal.Decimal, category models.Category) error {
	if err := s.ledger.AddExpense(ctx, userID, amount, s.today(), category); err != nil {
		return err
	}
	metrics.ExpensesRecordedTotal.Inc()
	s.logger.Debug().Int64("user_id", userID).Str("amount", amount.String()).
		Str("category", string(category)).Msg("expense recorded")
	return nil
}

func confirmation(amount decimal.Decimal, category models.Category) Reply {
	return Reply{Text: fmt.Sprintf("Got it, you spent $%s on %s", FormatAmount(amount), category.Lower())}
}
