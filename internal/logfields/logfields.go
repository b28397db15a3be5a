package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPet        = "pet"
	KeyFoodKind   = "food_kind"
	KeyUserID     = "user_id"
	KeyChatID     = "chat_id"
	KeyUsername   = "username"
	KeyCommand    = "command"
	KeyStatus     = "status"
	KeyScheduleID = "schedule_id"
	KeySchedule   = "schedule_name"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Pet(p string) slog.Attr          { return slog.String(KeyPet, p) }
func FoodKind(k string) slog.Attr     { return slog.String(KeyFoodKind, k) }
func UserID(id int64) slog.Attr       { return slog.Int64(KeyUserID, id) }
func ChatID(id int64) slog.Attr       { return slog.Int64(KeyChatID, id) }
func Username(u string) slog.Attr     { return slog.String(KeyUsername, u) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func ScheduleID(id string) slog.Attr  { return slog.String(KeyScheduleID, id) }
func ScheduleName(n string) slog.Attr { return slog.String(KeySchedule, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
