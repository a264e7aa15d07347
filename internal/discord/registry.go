package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/oatsaysai/spending-in-chat/internal/expense"
	"github.com/oatsaysai/spending-in-chat/internal/metrics"
)

const commandPrefix = "!"

// CommandHandler defines the function signature for command handlers
type CommandHandler func(ctx context.Context, m *discordgo.MessageCreate, args []string) (expense.Reply, error)

// CommandDefinition holds information about a command
type CommandDefinition struct {
	Name        string
	Description string
	Usage       string
	Handler     CommandHandler
}

// RegisterCommand adds a command to the registry
func (b *Bot) RegisterCommand(cmd CommandDefinition) {
	b.commands[strings.ToLower(cmd.Name)] = cmd
}

// GetCommand retrieves a command from the registry
func (b *Bot) GetCommand(name string) (CommandDefinition, bool) {
	cmd, exists := b.commands[strings.ToLower(name)]
	return cmd, exists
}

// ProcessCommand routes a message to a command handler or to free-text interpretation
func (b *Bot) ProcessCommand(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	content, mentioned := b.stripSelfMention(m)
	args := strings.Fields(content)
	if len(args) == 0 {
		return
	}
	isCommand := strings.HasPrefix(args[0], commandPrefix)
	// In guild channels only commands and messages addressed to the bot count
	if !isCommand && m.GuildID != "" && !mentioned {
		return
	}

	if !b.limiter.Allow(m.Author.ID) {
		metrics.RateLimitedTotal.WithLabelValues("discord").Inc()
		b.logger.Debug().Str("user_id", m.Author.ID).Msg("message dropped by rate limit")
		return
	}

	var (
		reply expense.Reply
		err   error
	)
	if isCommand {
		commandName := strings.ToLower(strings.TrimPrefix(args[0], commandPrefix))
		cmd, exists := b.GetCommand(commandName)
		if !exists {
			b.logger.Debug().Str("command", commandName).Msg("unrecognized command")
			return
		}
		metrics.CommandsTotal.WithLabelValues("discord", cmd.Name).Inc()
		reply, err = cmd.Handler(ctx, m, args)
	} else {
		reply, err = b.service.OnFreeTextMessage(ctx, m.Author.ID, content)
	}
	if err != nil {
		// already logged by the service; the reply carries a safe text
		b.logger.Debug().Err(err).Str("user_id", m.Author.ID).Msg("handler returned error")
	}
	b.send(m.ChannelID, m.Author.ID, reply)
}

// stripSelfMention returns the trimmed content without mentions of the bot, and
// whether the bot was mentioned at all.
func (b *Bot) stripSelfMention(m *discordgo.MessageCreate) (string, bool) {
	content := strings.TrimSpace(m.Content)
	self := b.self.Load()
	if self == nil {
		return content, false
	}
	mentioned := false
	for _, u := range m.Mentions {
		if u != nil && u.ID == self.ID {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return content, false
	}
	content = strings.NewReplacer("<@"+self.ID+">", " ", "<@!"+self.ID+">", " ").Replace(content)
	return strings.TrimSpace(content), true
}

// registerCommands registers all available commands
func (b *Bot) registerCommands() {
	b.RegisterCommand(CommandDefinition{
		Name:        "start",
		Description: "Register and show a short introduction",
		Usage:       "!start",
		Handler:     b.handleStart,
	})
	b.RegisterCommand(CommandDefinition{
		Name:        "help",
		Description: "Show categories and commands",
		Usage:       "!help",
		Handler:     b.handleHelp,
	})
	b.RegisterCommand(CommandDefinition{
		Name:        "show",
		Description: "Show spending for the current month",
		Usage:       "!show",
		Handler:     b.handleShow,
	})
	b.RegisterCommand(CommandDefinition{
		Name:        "undo",
		Description: "Remove the most recent expense",
		Usage:       "!undo",
		Handler:     b.handleUndo,
	})
	b.RegisterCommand(CommandDefinition{
		Name:        "cancel",
		Description: "Forget an amount waiting for a category",
		Usage:       "!cancel",
		Handler:     b.handleCancel,
	})
}
