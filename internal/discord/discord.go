package discord

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/oatsaysai/spending-in-chat/internal/expense"
	"github.com/oatsaysai/spending-in-chat/internal/metrics"
	"github.com/oatsaysai/spending-in-chat/internal/throttle"
)

// sender is the part of *discordgo.Session the bot writes through
type sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Bot connects the expense service to a Discord gateway session
type Bot struct {
	session  *discordgo.Session
	sender   sender
	service  *expense.Service
	limiter  *throttle.Limiter
	logger   zerolog.Logger
	commands map[string]CommandDefinition

	// self is the bot's own user, known once the gateway is ready
	self atomic.Pointer[discordgo.User]
}

// New creates the Discord session and registers commands. The gateway is not
// opened until Run.
func New(token string, service *expense.Service, limiter *throttle.Limiter, logger zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	b := newBot(session, service, limiter, logger)
	b.session = session
	return b, nil
}

func newBot(s sender, service *expense.Service, limiter *throttle.Limiter, logger zerolog.Logger) *Bot {
	b := &Bot{
		sender:   s,
		service:  service,
		limiter:  limiter,
		logger:   logger.With().Str("transport", "discord").Logger(),
		commands: make(map[string]CommandDefinition),
	}
	b.registerCommands()
	return b
}

// Run opens the gateway and serves events until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.self.Store(r.User)
		b.logger.Info().Str("bot_user", r.User.Username).Msg("connected to Discord")
	})
	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.ProcessCommand(ctx, m)
	})
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(ctx, i)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	<-ctx.Done()
	b.logger.Info().Msg("closing Discord session")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}
	return nil
}

// send posts a reply, with category buttons for ownerID when it asks for a choice
func (b *Bot) send(channelID, ownerID string, reply expense.Reply) {
	if reply.Text == "" {
		return
	}
	msg := &discordgo.MessageSend{Content: reply.Text}
	if reply.Prompt() {
		msg.Components = categoryComponents(ownerID, reply.Options)
	}
	if _, err := b.sender.ChannelMessageSendComplex(channelID, msg); err != nil {
		metrics.ErrorsTotal.WithLabelValues("send").Inc()
		b.logger.Error().Err(err).Str("channel_id", channelID).Msg("failed to send message")
	}
}
