// Package presence tracks which household members are currently home.
// The tracker is deliberately ephemeral: presence is a live fact, not a
// historical record, and is lost on restart.
package presence

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/homebot/internal/feedlog"
)

// Status of a tracked person.
type Status string

const (
	StatusHome    Status = "home"
	StatusAway    Status = "away"
	StatusUnknown Status = "unknown"
)

// Record is one person's presence entry.
type Record struct {
	ID        int64
	Name      string
	Status    Status
	ChangedAt time.Time
	Gender    feedlog.Gender
}

// Tracker is an in-memory person -> presence map. Only people who have
// interacted at least once appear in it.
type Tracker struct {
	mu      sync.RWMutex
	records map[int64]Record
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[int64]Record)}
}

// Set overwrites a person's status. Idempotent, always succeeds.
func (t *Tracker) Set(id int64, name string, status Status, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.records[id]
	rec.ID = id
	rec.Name = name
	rec.Status = status
	rec.ChangedAt = at
	t.records[id] = rec
}

// SetStatus updates a person's status and change time. The name of an
// existing record is kept, so an admin-curated name survives later toggles;
// unknown people are registered under fallbackName. Returns the effective
// name.
func (t *Tracker) SetStatus(id int64, fallbackName string, status Status, at time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[id]
	if !ok || rec.Name == "" {
		rec = Record{ID: id, Name: fallbackName, Gender: rec.Gender}
	}
	rec.Status = status
	rec.ChangedAt = at
	t.records[id] = rec
	return rec.Name
}

// Rename updates the display name of an existing record.
func (t *Tracker) Rename(id int64, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.records[id]; ok {
		rec.Name = name
		t.records[id] = rec
	}
}

// Touch registers a person with unknown status on first interaction without
// disturbing an existing record.
func (t *Tracker) Touch(id int64, name string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[id]; ok {
		return
	}
	t.records[id] = Record{ID: id, Name: name, Status: StatusUnknown, ChangedAt: at}
}

// SetGender attaches a grammatical gender tag to an existing record.
func (t *Tracker) SetGender(id int64, g feedlog.Gender) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.records[id]; ok {
		rec.Gender = g
		t.records[id] = rec
	}
}

// Remove drops a person from the tracker (account deactivation).
func (t *Tracker) Remove(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, id)
}

// Snapshot partitions known people into home and away groups. Unknown status
// renders as away; people who never interacted appear in neither group.
// Both groups are ordered by last-change time, oldest first.
func (t *Tracker) Snapshot() (home, away []Record) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, rec := range t.records {
		if rec.Status == StatusHome {
			home = append(home, rec)
		} else {
			away = append(away, rec)
		}
	}
	sortByChange(home)
	sortByChange(away)
	return home, away
}

// Empty reports whether anybody has interacted yet.
func (t *Tracker) Empty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records) == 0
}

func sortByChange(records []Record) {
	// Insertion sort; a household is small.
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].ChangedAt.Before(records[j-1].ChangedAt); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}
