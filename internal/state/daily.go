// Package state maintains the in-memory "today" view of feeding slots,
// reconstructed from the durable log at startup and cleared at rollover.
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/homebot/internal/config"
	"git.home.luguber.info/inful/homebot/internal/feedlog"
)

// Slot is the latest known feeding for one (pet, food kind) pair within the
// current local day.
type Slot struct {
	At     time.Time
	Feeder string
}

// PetState is a read model of one pet's slots for rendering.
type PetState struct {
	Key         string
	Label       string
	WetEligible bool
	Dry         *Slot
	Wet         *Slot
}

// DailyCache is the in-memory projection of "last feeding of each kind per
// pet, today". Derived, not authoritative: the feeding log is the source of
// truth and the cache is rebuilt from it after every restart.
type DailyCache struct {
	mu     sync.RWMutex
	store  feedlog.Store // nil in memory-only mode
	loc    *time.Location
	policy config.RolloverPolicy
	roster []config.Pet
	slots  map[string]map[feedlog.FoodKind]Slot
}

// NewDailyCache creates an empty cache for the given roster.
func NewDailyCache(store feedlog.Store, roster []config.Pet, loc *time.Location, policy config.RolloverPolicy) *DailyCache {
	return &DailyCache{
		store:  store,
		loc:    loc,
		policy: policy,
		roster: append([]config.Pet(nil), roster...),
		slots:  make(map[string]map[feedlog.FoodKind]Slot),
	}
}

// DayWindow returns [start, end) of the local calendar day containing now.
// Write-time stamping and read-time filtering must agree on the zone or
// events near midnight misclassify.
func DayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Record overwrites the slot for (pet, kind) unconditionally. Last call wins,
// even when timestamps arrive out of order. Callers must have already
// appended the event to the durable log.
func (c *DailyCache) Record(pet string, kind feedlog.FoodKind, at time.Time, feeder string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kinds, ok := c.slots[pet]
	if !ok {
		kinds = make(map[feedlog.FoodKind]Slot, 2)
		c.slots[pet] = kinds
	}
	kinds[kind] = Slot{At: at, Feeder: feeder}
}

// RebuildFromLog replaces every slot with the latest event per (pet, kind)
// for the local day containing now. Idempotent: rebuilding against an
// unchanged log yields an identical projection. Called once at startup to
// recover from restarts, and again after a roster reload.
func (c *DailyCache) RebuildFromLog(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make(map[string]map[feedlog.FoodKind]Slot)
	if c.store == nil {
		return nil
	}

	start, end := DayWindow(now, c.loc)
	for _, pet := range c.roster {
		kinds := []feedlog.FoodKind{feedlog.FoodDry}
		if pet.WetEligible {
			kinds = append(kinds, feedlog.FoodWet)
		}
		for _, kind := range kinds {
			event, err := c.store.LatestFeeding(ctx, pet.Key, kind, start, end)
			if err != nil {
				return fmt.Errorf("rebuild %s/%s: %w", pet.Key, kind, err)
			}
			if event == nil {
				continue
			}
			slots, ok := c.slots[pet.Key]
			if !ok {
				slots = make(map[feedlog.FoodKind]Slot, 2)
				c.slots[pet.Key] = slots
			}
			slots[kind] = Slot{At: event.At, Feeder: event.FeederName}
		}
	}
	return nil
}

// Rollover clears every slot. Under the purge policy it also deletes all
// feeding rows from the durable log. The lock is held across the clear so a
// concurrent Record cannot land inside a half-cleared projection.
func (c *DailyCache) Rollover(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make(map[string]map[feedlog.FoodKind]Slot)
	if c.policy == config.RolloverPurge && c.store != nil {
		if err := c.store.DeleteAllFeedings(ctx); err != nil {
			return fmt.Errorf("purge feeding log: %w", err)
		}
	}
	return nil
}

// SetRoster replaces the pet roster (config reload). Slots for pets no
// longer on the roster are dropped.
func (c *DailyCache) SetRoster(roster []config.Pet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roster = append([]config.Pet(nil), roster...)
	keep := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		keep[p.Key] = struct{}{}
	}
	for key := range c.slots {
		if _, ok := keep[key]; !ok {
			delete(c.slots, key)
		}
	}
}

// Snapshot returns the current projection in roster order. Slots are copies;
// mutating the result does not affect the cache.
func (c *DailyCache) Snapshot() []PetState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]PetState, 0, len(c.roster))
	for _, pet := range c.roster {
		ps := PetState{Key: pet.Key, Label: pet.Label, WetEligible: pet.WetEligible}
		if kinds, ok := c.slots[pet.Key]; ok {
			if slot, ok := kinds[feedlog.FoodDry]; ok {
				cp := slot
				ps.Dry = &cp
			}
			if slot, ok := kinds[feedlog.FoodWet]; ok {
				cp := slot
				ps.Wet = &cp
			}
		}
		result = append(result, ps)
	}
	return result
}

// Roster returns the current pet roster.
func (c *DailyCache) Roster() []config.Pet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]config.Pet(nil), c.roster...)
}
