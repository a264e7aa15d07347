package telegram

import (
	"strconv"
	"strings"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

const (
	categoryCallbackPrefix = "category:"
	buttonsPerRow          = 3
)

// categoryKeyboard returns an inline menu with one button per category, tagged
// with the user it was sent to
func categoryKeyboard(ownerID int64, options []models.CategoryOption) tgmodels.ReplyMarkup {
	prefix := categoryCallbackPrefix + strconv.FormatInt(ownerID, 10) + ":"
	var rows [][]tgmodels.InlineKeyboardButton
	for start := 0; start < len(options); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(options))
		row := make([]tgmodels.InlineKeyboardButton, 0, end-start)
		for _, opt := range options[start:end] {
			row = append(row, tgmodels.InlineKeyboardButton{
				Text:         opt.Label,
				CallbackData: prefix + opt.Value,
			})
		}
		rows = append(rows, row)
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// parseCategoryCallback splits callback data into the menu owner and category
func parseCategoryCallback(data string) (ownerID int64, category models.Category, ok bool) {
	rest, found := strings.CutPrefix(data, categoryCallbackPrefix)
	if !found {
		return 0, "", false
	}
	owner, value, found := strings.Cut(rest, ":")
	if !found {
		return 0, "", false
	}
	ownerID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return ownerID, models.Category(value), true
}
