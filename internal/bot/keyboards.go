package bot

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"postsummarizer/internal/domain"
)

const (
	showOriginalPrefix = "orig_"
	showSummaryPrefix  = "sum_"
	summarizePrefix    = "summarize_"
	unwatchPrefix      = "unwatch_"
)

func summaryKeyboard(s domain.Summary) [][]models.InlineKeyboardButton {
	switch {
	case s.Summary == "":
		return [][]models.InlineKeyboardButton{
			{{Text: "✨ Summarize", CallbackData: summarizePrefix + s.ID}},
		}
	case s.View == domain.ViewOriginal:
		return [][]models.InlineKeyboardButton{
			{{Text: "📝 Show summary", CallbackData: showSummaryPrefix + s.ID}},
		}
	default:
		return [][]models.InlineKeyboardButton{
			{{Text: "📄 Show original", CallbackData: showOriginalPrefix + s.ID}},
		}
	}
}

func feedListKeyboard(feeds []domain.ChatFeed) [][]models.InlineKeyboardButton {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(feeds))
	for i, f := range feeds {
		keyboard = append(keyboard, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("✖️ Unwatch %d", i+1),
			CallbackData: fmt.Sprintf("%s%d", unwatchPrefix, f.ID),
		}})
	}

	return keyboard
}
