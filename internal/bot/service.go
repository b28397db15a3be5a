// Package bot routes inbound household commands to the presence tracker and
// the daily feeding cache, and renders the textual replies.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/homebot/internal/config"
	"git.home.luguber.info/inful/homebot/internal/events"
	"git.home.luguber.info/inful/homebot/internal/feedlog"
	"git.home.luguber.info/inful/homebot/internal/logfields"
	"git.home.luguber.info/inful/homebot/internal/metrics"
	"git.home.luguber.info/inful/homebot/internal/presence"
	"git.home.luguber.info/inful/homebot/internal/state"
)

// feedTarget is the decoded meaning of one feeding button.
type feedTarget struct {
	pet      config.Pet
	kind     feedlog.FoodKind
	eligible bool
}

// Service owns all mutable bot state. It is constructed once at process
// start and shared by every handler invocation; there are no package
// globals.
type Service struct {
	cache     *state.DailyCache
	tracker   *presence.Tracker
	store     feedlog.Store // nil in memory-only mode
	recorder  metrics.Recorder
	publisher events.Publisher
	loc       *time.Location
	clock     func() time.Time

	mu          sync.RWMutex
	roster      []config.Pet
	feedButtons map[string]feedTarget
}

// Option configures a Service.
type Option func(*Service)

// WithStore attaches the durable store. Without it the bot runs memory-only.
func WithStore(store feedlog.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithPublisher attaches an integration event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService wires the bot core together.
func NewService(cache *state.DailyCache, tracker *presence.Tracker, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		cache:     cache,
		tracker:   tracker,
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
		loc:       loc,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.SetRoster(cache.Roster())
	return s
}

// SetRoster replaces the pet roster (config reload) and rebuilds the feeding
// button mapping.
func (s *Service) SetRoster(roster []config.Pet) {
	buttons := make(map[string]feedTarget, len(roster)*2)
	for _, pet := range roster {
		buttons[feedButtonText(pet.Label, feedlog.FoodDry)] = feedTarget{pet: pet, kind: feedlog.FoodDry, eligible: true}
		// A wet button exists in the mapping even for dry-only pets so that a
		// typed-in command gets a real answer instead of the fallback.
		buttons[feedButtonText(pet.Label, feedlog.FoodWet)] = feedTarget{pet: pet, kind: feedlog.FoodWet, eligible: pet.WetEligible}
	}

	s.mu.Lock()
	s.roster = append([]config.Pet(nil), roster...)
	s.feedButtons = buttons
	s.mu.Unlock()

	s.cache.SetRoster(roster)
}

// Rollover is the midnight task: clears the daily projection (and purges the
// log under the purge policy).
func (s *Service) Rollover(ctx context.Context) {
	if err := s.cache.Rollover(ctx); err != nil {
		slog.Error("Rollover failed", logfields.Error(err))
		return
	}
	s.recorder.IncRollover()
	slog.Info("Daily rollover completed")
}

// Rebuild restores the projection from the durable log for the current local
// day. Called once at startup; a rollover missed while the process was down
// self-heals here because the rebuild only considers today's events.
func (s *Service) Rebuild(ctx context.Context) error {
	return s.cache.RebuildFromLog(ctx, s.clock())
}

// KeyboardRows returns the declarative reply-keyboard layout for the
// transport adapter to render.
func (s *Service) KeyboardRows(k Keyboard) [][]string {
	switch k {
	case KeyboardCats:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return catsKeyboardRows(s.roster)
	default:
		return mainKeyboardRows()
	}
}

func (s *Service) lookupFeedButton(text string) (feedTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.feedButtons[text]
	return target, ok
}

func (s *Service) displayName(in Inbound) string {
	if in.FirstName != "" {
		return in.FirstName
	}
	return in.Username
}
