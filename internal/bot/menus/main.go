package menus

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
	"github.com/vladimiradmaev/diabetes-companion/internal/utils"
)

// Sender is the part of the Telegram API the bot uses. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// recentLimit caps the entries shown in the chat
const recentLimit = 10

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	text := `🩸 *Дневник диабета*

• Записывайте сахар, углеводы и инсулин
• Рассчитывайте дозу по своим коэффициентам
• Смотрите сводку за день

⚠️ *Важно:* Расчет дозы носит справочный характер, всегда консультируйтесь с врачом!

Выберите действие:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendSettingsMenu shows the current ratios and time zone
func SendSettingsMenu(api Sender, chatID int64, settings domain.DosingSettings, timezone string) error {
	text := fmt.Sprintf("⚙️ Настройки\n\n"+
		"Углеводный коэффициент: %s г на 1 ед.\n"+
		"Фактор чувствительности: %s мг/дл на 1 ед.\n"+
		"Часовой пояс: %s",
		FormatNumber(settings.CarbRatio), FormatNumber(settings.GlucoseRatio), timezone)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.SettingsMenu()
	_, err := api.Send(msg)
	return err
}

// SendAlarmsMenu lists stored alarms
func SendAlarmsMenu(api Sender, chatID int64, alarms []domain.Alarm) error {
	var b strings.Builder
	if len(alarms) == 0 {
		b.WriteString("У вас пока нет напоминаний. Нажмите 'Добавить' чтобы создать новое.")
	} else {
		b.WriteString("⏰ Напоминания:\n")
		for _, a := range alarms {
			fmt.Fprintf(&b, "\n%s — %s", utils.FormatClock(a.Hour, a.Minute), a.Label)
		}
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = keyboards.AlarmsMenu(alarms)
	_, err := api.Send(msg)
	return err
}

// SendEntries lists the most recent entries with delete buttons
func SendEntries(api Sender, chatID int64, entries []domain.LogEntry, loc *time.Location) error {
	if len(entries) > recentLimit {
		entries = entries[:recentLimit]
	}
	msg := tgbotapi.NewMessage(chatID, FormatEntries(entries, loc))
	msg.ReplyMarkup = keyboards.EntriesMenu(entries, loc)
	_, err := api.Send(msg)
	return err
}

// FormatNumber prints a value without trailing zeros
func FormatNumber(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// FormatEntry renders one log line
func FormatEntry(e domain.LogEntry, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  🩸 %d", e.Time().In(loc).Format("02.01 15:04"), e.BloodGlucose)
	if e.CarbsGrams != nil {
		fmt.Fprintf(&b, "  🍞 %s г", FormatNumber(*e.CarbsGrams))
	}
	if e.InsulinUnits != nil {
		fmt.Fprintf(&b, "  💉 %s ед.", FormatNumber(*e.InsulinUnits))
	}
	return b.String()
}

// FormatEntries renders a list of entries, newest first
func FormatEntries(entries []domain.LogEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "Записей пока нет."
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "📋 Последние записи:")
	for _, e := range entries {
		lines = append(lines, FormatEntry(e, loc))
	}
	return strings.Join(lines, "\n")
}

// FormatSuggestion renders a dose suggestion with its breakdown
func FormatSuggestion(r *services.DoseResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Сахар: %d мг/дл, углеводы: %s г\n\n", r.BloodGlucose, FormatNumber(r.Carbs))
	if !r.Suggestion.NeedsDose {
		b.WriteString("✅ Коррекция не требуется")
		return b.String()
	}
	fmt.Fprintf(&b, "💉 Рекомендуемая доза: *%.1f ед.*\n", r.Suggestion.Units)
	fmt.Fprintf(&b, "на углеводы: %.2f ед.\n", r.Suggestion.CarbUnits)
	fmt.Fprintf(&b, "коррекция: %.2f ед.", r.Suggestion.CorrectionUnits)
	return b.String()
}

// FormatTrend renders the daily summary
func FormatTrend(t dosing.DailyTrend) string {
	header := fmt.Sprintf("📈 Сводка за %s", t.Day.String())
	if !t.HasData() {
		return header + "\n\nЗа этот день нет измерений."
	}

	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\n\nИзмерений: %d", t.Count)
	fmt.Fprintf(&b, "\nСредний: %d мг/дл", t.Average)
	fmt.Fprintf(&b, "\nМин / макс: %d / %d мг/дл", t.Min, t.Max)
	if t.TotalCarbs > 0 {
		fmt.Fprintf(&b, "\nУглеводы: %s г", FormatNumber(t.TotalCarbs))
	}
	if t.TotalInsulin > 0 {
		fmt.Fprintf(&b, "\nИнсулин: %s ед.", FormatNumber(t.TotalInsulin))
	}
	fmt.Fprintf(&b, "\n\n%s", utils.Sparkline(t.Normalized()))
	return b.String()
}
