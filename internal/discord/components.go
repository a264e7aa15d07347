package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/oatsaysai/spending-in-chat/internal/metrics"
	"github.com/oatsaysai/spending-in-chat/internal/models"
)

const (
	// Component Custom IDs
	categoryButtonPrefix = "category_"

	buttonsPerRow = 3
)

// categoryComponents lays the category options out as button rows. Each custom ID
// carries the user the menu was sent to.
func categoryComponents(ownerID string, options []models.CategoryOption) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	for start := 0; start < len(options); start += buttonsPerRow {
		end := start + buttonsPerRow
		if end > len(options) {
			end = len(options)
		}
		row := discordgo.ActionsRow{}
		for _, opt := range options[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    opt.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: categoryButtonPrefix + ownerID + "_" + opt.Value,
			})
		}
		components = append(components, row)
	}
	return components
}

// parseCategoryID splits a button's custom ID into the menu owner and category
func parseCategoryID(customID string) (ownerID string, category models.Category, ok bool) {
	rest, found := strings.CutPrefix(customID, categoryButtonPrefix)
	if !found {
		return "", "", false
	}
	ownerID, name, found := strings.Cut(rest, "_")
	if !found || ownerID == "" {
		return "", "", false
	}
	return ownerID, models.Category(name), true
}

// handleInteraction routes component interactions to the appropriate handler
func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID

	switch {
	case strings.HasPrefix(customID, categoryButtonPrefix):
		b.handleCategoryButton(ctx, i)
	default:
		b.logger.Warn().Str("custom_id", customID).Msg("unknown component interaction")
		b.respondWithError(i, "I don't know that button.")
	}
}

// handleCategoryButton records the pending amount under the pressed category
func (b *Bot) handleCategoryButton(ctx context.Context, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	if userID == "" {
		b.respondWithError(i, "I could not tell who pressed that.")
		return
	}
	if !b.limiter.Allow(userID) {
		metrics.RateLimitedTotal.WithLabelValues("discord").Inc()
		b.respondWithError(i, "Slow down a little and try again.")
		return
	}

	ownerID, category, ok := parseCategoryID(i.MessageComponentData().CustomID)
	if !ok {
		b.respondWithError(i, "I don't know that button.")
		return
	}
	if ownerID != userID {
		b.logger.Debug().Str("user_id", userID).Str("owner_id", ownerID).Msg("category button pressed by another user")
		b.respondWithError(i, "This menu belongs to someone else.")
		return
	}

	reply, err := b.service.OnCategoryChosen(ctx, userID, category)
	if err != nil {
		b.logger.Debug().Err(err).Str("user_id", userID).Msg("category choice failed")
	}

	// Replace the prompt so the buttons cannot be pressed twice
	err = b.sender.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    reply.Text,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("send").Inc()
		b.logger.Error().Err(err).Msg("error responding to category button")
	}
}

// respondWithError sends an ephemeral error message
func (b *Bot) respondWithError(i *discordgo.InteractionCreate, message string) {
	err := b.sender.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "⚠️ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("error sending interaction error")
	}
}

// interactionUserID returns the presser in both guild channels and DMs
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
