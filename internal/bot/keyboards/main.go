package keyboards

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/utils"
)

// Callback data
const (
	MainMenuData    = "main_menu"
	LogEntryData    = "log_entry"
	DoseData        = "dose"
	TodayData       = "today"
	EntriesData     = "entries"
	SettingsData    = "settings"
	AlarmsData      = "alarms"
	SaveDoseData    = "save_dose"
	SetRatiosData   = "set_ratios"
	SetTimezoneData = "set_timezone"
	AddAlarmData    = "add_alarm"
	ClearAlarmsData = "clear_alarms"

	// prefixes followed by a record id
	DeleteEntryPrefix = "del_entry:"
	DeleteAlarmPrefix = "del_alarm:"
)

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", MainMenuData),
	)
}

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩸 Записать", LogEntryData),
			tgbotapi.NewInlineKeyboardButtonData("💉 Рассчитать дозу", DoseData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Сегодня", TodayData),
			tgbotapi.NewInlineKeyboardButtonData("📋 Записи", EntriesData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Напоминания", AlarmsData),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", SettingsData),
		),
	)
}

// SettingsMenu creates the settings menu keyboard
func SettingsMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Коэффициенты", SetRatiosData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Часовой пояс", SetTimezoneData),
		),
		backRow(),
	)
}

// DoseMenu is shown under a suggestion that can be saved
func DoseMenu(canSave bool) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup()
	if canSave {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить в дневник", SaveDoseData),
		))
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, backRow())
	return keyboard
}

// EntriesMenu lists one delete button per entry
func EntriesMenu(entries []domain.LogEntry, loc *time.Location) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup()
	for _, e := range entries {
		label := fmt.Sprintf("🗑 %s · %d", e.Time().In(loc).Format("02.01 15:04"), e.BloodGlucose)
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, DeleteEntryPrefix+e.ID),
		))
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, backRow())
	return keyboard
}

// AlarmsMenu creates the alarm management keyboard
func AlarmsMenu(alarms []domain.Alarm) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", AddAlarmData),
		),
	)
	for _, a := range alarms {
		label := fmt.Sprintf("🗑 %s %s", utils.FormatClock(a.Hour, a.Minute), a.Label)
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, DeleteAlarmPrefix+a.ID),
		))
	}
	if len(alarms) > 0 {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Удалить все", ClearAlarmsData),
		))
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, backRow())
	return keyboard
}

// BackToMain is a keyboard with a single back button
func BackToMain() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(backRow())
}
