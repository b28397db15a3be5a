package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/homebot/internal/events"
	"git.home.luguber.info/inful/homebot/internal/feedlog"
	"git.home.luguber.info/inful/homebot/internal/logfields"
	"git.home.luguber.info/inful/homebot/internal/metrics"
	"git.home.luguber.info/inful/homebot/internal/presence"
)

// Handle routes one inbound message and always returns a reply: unrecognized
// text falls through to the generic answer, never to silence.
func (s *Service) Handle(ctx context.Context, in Inbound) Reply {
	command := commandLabel(in)
	started := s.clock()
	defer func() {
		s.recorder.ObserveHandleDuration(command, time.Since(started))
	}()

	if in.IsStart {
		return s.handleStart(ctx, in)
	}

	// First interaction registers the person with unknown status so they
	// appear in the away group of the report.
	s.tracker.Touch(in.UserID, s.displayName(in), s.clock())

	switch in.Text {
	case btnHome:
		return s.handlePresence(in, presence.StatusHome, msgMarkedHome)
	case btnAway:
		return s.handlePresence(in, presence.StatusAway, msgMarkedAway)
	case btnWhoHome:
		s.recorder.IncCommand("who_home", metrics.ResultOK)
		if s.tracker.Empty() {
			return Reply{Text: msgNobodyYet, Keyboard: KeyboardMain}
		}
		home, away := s.tracker.Snapshot()
		return Reply{Text: presenceReport(home, away, s.loc), Markdown: true, Keyboard: KeyboardMain}
	case btnCatsMenu:
		s.recorder.IncCommand("cats_menu", metrics.ResultOK)
		return Reply{Text: msgCatsMenu, Keyboard: KeyboardCats}
	case btnBack:
		s.recorder.IncCommand("back", metrics.ResultOK)
		return Reply{Text: msgMainMenu, Keyboard: KeyboardMain}
	case btnCatsStatus:
		s.recorder.IncCommand("cats_status", metrics.ResultOK)
		return Reply{Text: catsReport(s.cache.Snapshot(), s.loc), Markdown: true, Keyboard: KeyboardMain}
	}

	if target, ok := s.lookupFeedButton(in.Text); ok {
		return s.handleFeeding(ctx, in, target)
	}

	if strings.HasPrefix(in.Text, "/") {
		return s.handleAdmin(ctx, in)
	}

	s.recorder.IncCommand("unknown", metrics.ResultOK)
	return Reply{Text: msgNotUnderstood, Keyboard: KeyboardMain}
}

func (s *Service) handleStart(ctx context.Context, in Inbound) Reply {
	now := s.clock()
	name := s.displayName(in)

	if s.store != nil {
		account, err := s.store.UpsertAccount(ctx, in.UserID, in.Username, name)
		if err != nil {
			slog.Error("Account upsert failed", logfields.UserID(in.UserID), logfields.Error(err))
		} else {
			if account.DisplayName != "" {
				name = account.DisplayName
			}
			defer s.tracker.SetGender(in.UserID, account.Gender)
		}
	}

	s.tracker.Set(in.UserID, name, presence.StatusHome, now)
	s.recorder.IncCommand("start", metrics.ResultOK)
	slog.Info("User started the bot", logfields.UserID(in.UserID), logfields.Username(in.Username))
	return Reply{Text: msgGreeting, Keyboard: KeyboardMain}
}

func (s *Service) handlePresence(in Inbound, status presence.Status, confirmation string) Reply {
	now := s.clock()
	// The tracker keeps the curated name it was registered with; the platform
	// name is only the fallback for people who never ran /start.
	name := s.tracker.SetStatus(in.UserID, s.displayName(in), status, now)
	s.publisher.PublishPresence(events.PresenceChanged{
		UserID: in.UserID,
		Name:   name,
		Status: string(status),
	})
	s.recorder.IncCommand("presence", metrics.ResultOK)
	return Reply{Text: confirmation, Keyboard: KeyboardMain}
}

// handleFeeding appends to the durable log first; the in-memory slot is only
// overwritten after the append succeeded, so the projection never runs ahead
// of the log.
func (s *Service) handleFeeding(ctx context.Context, in Inbound, target feedTarget) Reply {
	if !target.eligible {
		s.recorder.IncCommand("feed", metrics.ResultDenied)
		return Reply{Text: wetRefusal(target.pet.Label), Keyboard: KeyboardCats}
	}

	now := s.clock()
	feeder := s.displayName(in)

	if s.store != nil {
		event := feedlog.FeedingEvent{
			Pet:        target.pet.Key,
			Kind:       target.kind,
			At:         now.UTC(),
			FeederID:   in.UserID,
			FeederName: feeder,
		}
		if err := s.store.AppendFeeding(ctx, event); err != nil {
			slog.Error("Feeding append failed",
				logfields.Pet(target.pet.Key),
				logfields.FoodKind(string(target.kind)),
				logfields.Error(err))
			s.recorder.IncCommand("feed", metrics.ResultError)
			return Reply{Text: msgStorageError, Keyboard: KeyboardCats}
		}
	}

	s.cache.Record(target.pet.Key, target.kind, now.UTC(), feeder)
	s.recorder.IncCommand("feed", metrics.ResultOK)
	s.recorder.IncFeeding(target.pet.Key, string(target.kind))
	s.publisher.PublishFeeding(events.FeedingRecorded{
		Pet:        target.pet.Key,
		Kind:       string(target.kind),
		At:         now.UTC(),
		FeederID:   in.UserID,
		FeederName: feeder,
	})

	slog.Info("Feeding recorded",
		logfields.Pet(target.pet.Key),
		logfields.FoodKind(string(target.kind)),
		logfields.UserID(in.UserID))

	return Reply{Text: feedingConfirmation(target.pet.Label, target.kind, now, s.loc), Keyboard: KeyboardCats}
}

func commandLabel(in Inbound) string {
	if in.IsStart {
		return "start"
	}
	if strings.HasPrefix(in.Text, "/") {
		name, _, _ := strings.Cut(in.Text, " ")
		return name
	}
	return "button"
}
