package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/homebot/internal/feedlog"
	"git.home.luguber.info/inful/homebot/internal/logfields"
	"git.home.luguber.info/inful/homebot/internal/metrics"
)

// Usage strings for malformed administrative input.
const (
	usageSetAdmin   = "Использование: /setadmin <id>"
	usageDeactivate = "Использование: /deactivate <id>"
	usageRename     = "Использование: /rename <id> <имя>"
	usageSetGender  = "Использование: /setgender <id> m|f"
)

// handleAdmin routes slash commands. Every admin command requires storage
// and gates on the admin predicate first, failing closed.
func (s *Service) handleAdmin(ctx context.Context, in Inbound) Reply {
	name, args, _ := strings.Cut(strings.TrimSpace(in.Text), " ")
	args = strings.TrimSpace(args)

	switch name {
	case "/users", "/setadmin", "/deactivate", "/rename", "/setgender":
	default:
		s.recorder.IncCommand("unknown", metrics.ResultOK)
		return Reply{Text: msgNotUnderstood, Keyboard: KeyboardMain}
	}

	if s.store == nil {
		s.recorder.IncCommand(name, metrics.ResultDegraded)
		return Reply{Text: msgNoDatabase, Keyboard: KeyboardMain}
	}

	admin, err := s.store.IsAdmin(ctx, in.UserID)
	if err != nil {
		slog.Error("Admin check failed", logfields.UserID(in.UserID), logfields.Error(err))
	}
	if err != nil || !admin {
		s.recorder.IncCommand(name, metrics.ResultDenied)
		return Reply{Text: msgAdminOnly, Keyboard: KeyboardMain}
	}

	switch name {
	case "/users":
		return s.adminListUsers(ctx)
	case "/setadmin":
		return s.adminOnID(ctx, "/setadmin", args, usageSetAdmin, s.store.SetAdmin)
	case "/deactivate":
		return s.adminDeactivate(ctx, args)
	case "/rename":
		return s.adminRename(ctx, args)
	default:
		return s.adminSetGender(ctx, args)
	}
}

func (s *Service) adminListUsers(ctx context.Context) Reply {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		slog.Error("Listing accounts failed", logfields.Error(err))
		s.recorder.IncCommand("/users", metrics.ResultError)
		return Reply{Text: msgStorageError, Keyboard: KeyboardMain}
	}
	s.recorder.IncCommand("/users", metrics.ResultOK)
	return Reply{Text: accountsReport(accounts), Markdown: true, Keyboard: KeyboardMain}
}

// adminOnID runs a single-argument account operation after parsing the id.
func (s *Service) adminOnID(ctx context.Context, command, args, usage string, op func(context.Context, int64) error) Reply {
	id, ok := parseID(args)
	if !ok {
		s.recorder.IncCommand(command, metrics.ResultError)
		return Reply{Text: usage, Keyboard: KeyboardMain}
	}
	return s.finishAdmin(command, op(ctx, id))
}

func (s *Service) adminDeactivate(ctx context.Context, args string) Reply {
	id, ok := parseID(args)
	if !ok {
		s.recorder.IncCommand("/deactivate", metrics.ResultError)
		return Reply{Text: usageDeactivate, Keyboard: KeyboardMain}
	}
	reply := s.finishAdmin("/deactivate", s.store.Deactivate(ctx, id))
	if reply.Text == msgDone {
		// The account row stays (soft delete); the live presence entry goes.
		s.tracker.Remove(id)
	}
	return reply
}

func (s *Service) adminRename(ctx context.Context, args string) Reply {
	idRaw, newName, _ := strings.Cut(args, " ")
	newName = strings.TrimSpace(newName)
	id, ok := parseID(idRaw)
	if !ok || newName == "" {
		s.recorder.IncCommand("/rename", metrics.ResultError)
		return Reply{Text: usageRename, Keyboard: KeyboardMain}
	}
	reply := s.finishAdmin("/rename", s.store.Rename(ctx, id, newName))
	if reply.Text == msgDone {
		s.tracker.Rename(id, newName)
		// Historical rows changed under the projection; rebuild so today's
		// slots show the new name too.
		if err := s.cache.RebuildFromLog(ctx, s.clock()); err != nil {
			slog.Error("Projection rebuild after rename failed", logfields.Error(err))
		}
	}
	return reply
}

func (s *Service) adminSetGender(ctx context.Context, args string) Reply {
	idRaw, tag, _ := strings.Cut(args, " ")
	id, ok := parseID(idRaw)
	gender, known := parseGender(strings.TrimSpace(tag))
	if !ok || !known {
		s.recorder.IncCommand("/setgender", metrics.ResultError)
		return Reply{Text: usageSetGender, Keyboard: KeyboardMain}
	}
	reply := s.finishAdmin("/setgender", s.store.SetGender(ctx, id, gender))
	if reply.Text == msgDone {
		s.tracker.SetGender(id, gender)
	}
	return reply
}

func (s *Service) finishAdmin(command string, err error) Reply {
	switch {
	case errors.Is(err, feedlog.ErrNoAccount):
		s.recorder.IncCommand(command, metrics.ResultError)
		return Reply{Text: msgNoSuchAccount, Keyboard: KeyboardMain}
	case err != nil:
		slog.Error("Admin command failed", logfields.Command(command), logfields.Error(err))
		s.recorder.IncCommand(command, metrics.ResultError)
		return Reply{Text: msgStorageError, Keyboard: KeyboardMain}
	default:
		s.recorder.IncCommand(command, metrics.ResultOK)
		return Reply{Text: msgDone, Keyboard: KeyboardMain}
	}
}

func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseGender(raw string) (feedlog.Gender, bool) {
	switch strings.ToLower(raw) {
	case "m", "male", "м":
		return feedlog.GenderMale, true
	case "f", "female", "ж":
		return feedlog.GenderFemale, true
	default:
		return feedlog.GenderUnknown, false
	}
}
