package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/oatsaysai/spending-in-chat/internal/expense"
	"github.com/oatsaysai/spending-in-chat/internal/throttle"
)

// sender is the part of *bot.Bot the handlers write through
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type Bot struct {
	api      *bot.Bot
	sender   sender
	service  *expense.Service
	limiter  *throttle.Limiter
	logger   zerolog.Logger
	commands map[string]commandHandler
}

type Config struct {
	Token string
	Debug bool
}

// New creates a new Telegram bot instance
func New(cfg Config, service *expense.Service, limiter *throttle.Limiter, logger zerolog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	b := newBot(nil, service, limiter, logger)

	opts := []bot.Option{
		bot.WithDefaultHandler(b.handleMessage),
		bot.WithCallbackQueryDataHandler(categoryCallbackPrefix, bot.MatchTypePrefix, b.handleCallback),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.api = api
	b.sender = api
	return b, nil
}

func newBot(s sender, service *expense.Service, limiter *throttle.Limiter, logger zerolog.Logger) *Bot {
	b := &Bot{
		sender:  s,
		service: service,
		limiter: limiter,
		logger:  logger.With().Str("transport", "telegram").Logger(),
	}
	b.registerCommands()
	return b
}

// Run starts long polling and blocks until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Info().Str("username", me.Username).Int64("id", me.ID).Msg("telegram bot started")
	b.api.Start(ctx)
	b.logger.Info().Msg("telegram bot stopped")
	return nil
}
