package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/oatsaysai/spending-in-chat/internal/expense"
	"github.com/oatsaysai/spending-in-chat/internal/metrics"
)

type commandHandler func(ctx context.Context, msg *tgmodels.Message) (expense.Reply, error)

// registerCommands registers all command handlers
func (b *Bot) registerCommands() {
	b.commands = map[string]commandHandler{
		"start": func(ctx context.Context, msg *tgmodels.Message) (expense.Reply, error) {
			return b.service.OnStart(ctx, userKey(msg.From.ID), senderName(msg.From))
		},
		"help": func(context.Context, *tgmodels.Message) (expense.Reply, error) {
			return b.service.OnHelp(), nil
		},
		"show": func(ctx context.Context, msg *tgmodels.Message) (expense.Reply, error) {
			return b.service.OnShowExpenses(ctx, userKey(msg.From.ID))
		},
		"undo": func(ctx context.Context, msg *tgmodels.Message) (expense.Reply, error) {
			return b.service.OnUndo(ctx, userKey(msg.From.ID))
		},
		"cancel": func(ctx context.Context, msg *tgmodels.Message) (expense.Reply, error) {
			return b.service.OnCancel(ctx, userKey(msg.From.ID))
		},
	}
}

// handleMessage routes commands and free text. Expenses belong to the sender, so
// members of a group chat each keep their own ledger.
func (b *Bot) handleMessage(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	userID := userKey(msg.From.ID)

	if !b.limiter.Allow(userID) {
		metrics.RateLimitedTotal.WithLabelValues("telegram").Inc()
		b.logger.Debug().Str("user_id", userID).Msg("message dropped by rate limit")
		return
	}

	var (
		reply expense.Reply
		err   error
	)
	if name, ok := commandName(msg.Text); ok {
		handler, exists := b.commands[name]
		if !exists {
			b.logger.Debug().Str("command", name).Msg("unknown command")
			reply = b.service.OnHelp()
		} else {
			metrics.CommandsTotal.WithLabelValues("telegram", name).Inc()
			reply, err = handler(ctx, msg)
		}
	} else {
		reply, err = b.service.OnFreeTextMessage(ctx, userID, msg.Text)
	}
	if err != nil {
		b.logger.Debug().Err(err).Str("user_id", userID).Msg("handler returned error")
	}
	b.send(ctx, msg.Chat.ID, msg.From.ID, reply)
}

// handleCallback handles category button presses
func (b *Bot) handleCallback(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	msg := callback.Message.Message
	if msg == nil {
		b.logger.Warn().Str("data", callback.Data).Msg("callback message is not accessible")
		b.answer(ctx, callback.ID, "This menu has expired.")
		return
	}
	userID := userKey(callback.From.ID)

	if !b.limiter.Allow(userID) {
		metrics.RateLimitedTotal.WithLabelValues("telegram").Inc()
		b.answer(ctx, callback.ID, "Slow down a little and try again.")
		return
	}

	ownerID, category, ok := parseCategoryCallback(callback.Data)
	if !ok {
		b.answer(ctx, callback.ID, "Unknown action")
		return
	}
	if ownerID != callback.From.ID {
		b.logger.Debug().Str("user_id", userID).Int64("owner_id", ownerID).Msg("category menu used by another user")
		b.answer(ctx, callback.ID, "This menu belongs to someone else.")
		return
	}

	reply, err := b.service.OnCategoryChosen(ctx, userID, category)
	if err != nil {
		b.logger.Debug().Err(err).Str("user_id", userID).Msg("category choice failed")
	}
	b.answer(ctx, callback.ID, "")

	// Replace the prompt so the menu cannot be used twice
	_, err = b.sender.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      reply.Text,
	})
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("send").Inc()
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to edit prompt")
	}
}

// send posts reply to chatID, with a category menu only ownerID may use
func (b *Bot) send(ctx context.Context, chatID, ownerID int64, reply expense.Reply) {
	if reply.Text == "" {
		return
	}
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   reply.Text,
	}
	if reply.Prompt() {
		params.ReplyMarkup = categoryKeyboard(ownerID, reply.Options)
	}
	if _, err := b.sender.SendMessage(ctx, params); err != nil {
		metrics.ErrorsTotal.WithLabelValues("send").Inc()
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	_, err := b.sender.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to answer callback")
	}
}

// commandName returns "show" for "/show" and "/show@SpendingBot extra"
func commandName(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	name := strings.TrimPrefix(fields[0], "/")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), name != ""
}

// userKey is the chat identity a Telegram user is stored under
func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func senderName(u *tgmodels.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
