package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/oatsaysai/spending-in-chat/internal/expense"
)

// handleStart handles the !start command
func (b *Bot) handleStart(ctx context.Context, m *discordgo.MessageCreate, _ []string) (expense.Reply, error) {
	return b.service.OnStart(ctx, m.Author.ID, displayName(m.Author))
}

// handleHelp handles the !help command
func (b *Bot) handleHelp(_ context.Context, _ *discordgo.MessageCreate, _ []string) (expense.Reply, error) {
	return b.service.OnHelp(), nil
}

// handleShow handles the !show command
func (b *Bot) handleShow(ctx context.Context, m *discordgo.MessageCreate, _ []string) (expense.Reply, error) {
	return b.service.OnShowExpenses(ctx, m.Author.ID)
}

// handleUndo handles the !undo command
func (b *Bot) handleUndo(ctx context.Context, m *discordgo.MessageCreate, _ []string) (expense.Reply, error) {
	return b.service.OnUndo(ctx, m.Author.ID)
}

// handleCancel handles the !cancel command
func (b *Bot) handleCancel(ctx context.Context, m *discordgo.MessageCreate, _ []string) (expense.Reply, error) {
	return b.service.OnCancel(ctx, m.Author.ID)
}

// displayName prefers the global display name over the account name
func displayName(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
