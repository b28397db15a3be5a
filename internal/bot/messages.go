package bot

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/homebot/internal/feedlog"
	"git.home.luguber.info/inful/homebot/internal/presence"
	"git.home.luguber.info/inful/homebot/internal/state"
)

// Button texts. These are the contract with the reply keyboards: routing
// matches on the exact string the keyboard sent back.
const (
	btnHome       = "🏠 Я дома"
	btnAway       = "🚶 Я ушёл"
	btnWhoHome    = "❓ Кто дома"
	btnCatsStatus = "🐾 Статус котов"
	btnCatsMenu   = "🐱 Меню котов"
	btnBack       = "⬅️ Назад"
)

const (
	msgGreeting      = "Привет! Бот запущен 🐾\n\nИспользуй меню ниже."
	msgMarkedHome    = "Отмечено 🏠"
	msgMarkedAway    = "Отмечено 🚶"
	msgCatsMenu      = "Меню котов 🐱"
	msgMainMenu      = "Главное меню"
	msgNotUnderstood = "Не понял 🤔"
	msgNobodyYet     = "Пока никто не отмечался."
	msgNoDatabase    = "⚠️ База данных не настроена."
	msgAdminOnly     = "Только для админа 🔒"
	msgDone          = "Готово ✅"
	msgStorageError  = "⚠️ Не получилось записать, попробуй ещё раз."
	msgNoSuchAccount = "Нет такого пользователя 🤷"
)

const timeLayout = "15:04 02.01"

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timeLayout)
}

func formatSlot(slot *state.Slot, loc *time.Location) string {
	if slot == nil {
		return "—"
	}
	return fmt.Sprintf("%s (%s)", formatTime(slot.At, loc), slot.Feeder)
}

func feedButtonText(label string, kind feedlog.FoodKind) string {
	if kind == feedlog.FoodWet {
		return label + " 💧"
	}
	return label + " 🍖"
}

func foodPhrase(kind feedlog.FoodKind) string {
	if kind == feedlog.FoodWet {
		return "влажным (💧)"
	}
	return "сухим (🍖)"
}

// wetRefusal explains why a dry-only pet cannot get wet food.
func wetRefusal(label string) string {
	return fmt.Sprintf("%s не ест влажный корм 🙅", label)
}

func feedingConfirmation(label string, kind feedlog.FoodKind, at time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s накормлен %s в %s", label, foodPhrase(kind), formatTime(at, loc))
}

// awayPhrase picks the gendered verb for the away list.
func awayPhrase(g feedlog.Gender) string {
	switch g {
	case feedlog.GenderFemale:
		return "ушла"
	case feedlog.GenderMale:
		return "ушёл"
	default:
		return ""
	}
}

// presenceReport renders the who's-home answer. Unknown-status people show
// up in the away group; people who never interacted are absent entirely.
func presenceReport(home, away []presence.Record, loc *time.Location) string {
	var b strings.Builder

	b.WriteString("🏠 *Дома:*\n")
	if len(home) == 0 {
		b.WriteString("никого")
	} else {
		for i, rec := range home {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "• %s (с %s)", rec.Name, formatTime(rec.ChangedAt, loc))
		}
	}

	b.WriteString("\n\n🚶 *Вне дома:*\n")
	if len(away) == 0 {
		b.WriteString("никого")
	} else {
		for i, rec := range away {
			if i > 0 {
				b.WriteString("\n")
			}
			if verb := awayPhrase(rec.Gender); verb != "" {
				fmt.Fprintf(&b, "• %s (%s в %s)", rec.Name, verb, formatTime(rec.ChangedAt, loc))
			} else {
				fmt.Fprintf(&b, "• %s (с %s)", rec.Name, formatTime(rec.ChangedAt, loc))
			}
		}
	}

	return b.String()
}

// catsReport renders today's feeding snapshot, dry before wet. The wet line
// is omitted for dry-only pets.
func catsReport(snapshot []state.PetState, loc *time.Location) string {
	lines := []string{"🐾 *Кормление котов:*", ""}
	for _, ps := range snapshot {
		lines = append(lines, ps.Label+":")
		lines = append(lines, "  • сухой 🍖: "+formatSlot(ps.Dry, loc))
		if ps.WetEligible {
			lines = append(lines, "  • влажный 💧: "+formatSlot(ps.Wet, loc))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// accountsReport renders the /users listing.
func accountsReport(accounts []feedlog.Account) string {
	if len(accounts) == 0 {
		return "Пользователей пока нет."
	}
	var b strings.Builder
	b.WriteString("👥 *Пользователи:*")
	for _, a := range accounts {
		fmt.Fprintf(&b, "\n• %d", a.ID)
		if a.Username != "" {
			fmt.Fprintf(&b, " @%s", a.Username)
		}
		if a.DisplayName != "" {
			fmt.Fprintf(&b, " %s", a.DisplayName)
		}
		if a.Admin {
			b.WriteString(" 👑")
		}
		if !a.Active {
			b.WriteString(" (отключён)")
		}
	}
	return b.String()
}
