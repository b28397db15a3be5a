package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/homebot/internal/feedlog"
)

func TestSetAndSnapshot(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tr.Set(1, "Ваня", StatusHome, at)
	tr.Set(2, "Оля", StatusAway, at.Add(time.Minute))

	home, away := tr.Snapshot()
	require.Len(t, home, 1)
	require.Len(t, away, 1)
	require.Equal(t, "Ваня", home[0].Name)
	require.Equal(t, "Оля", away[0].Name)
	require.Equal(t, at.Add(time.Minute), away[0].ChangedAt)
}

func TestSetOverwrites(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tr.Set(1, "Ваня", StatusHome, at)
	tr.Set(1, "Ваня", StatusAway, at.Add(time.Hour))

	home, away := tr.Snapshot()
	require.Empty(t, home)
	require.Len(t, away, 1)
	require.Equal(t, at.Add(time.Hour), away[0].ChangedAt)
}

func TestUnknownRendersAsAway(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tr.Touch(1, "Ваня", at)

	home, away := tr.Snapshot()
	require.Empty(t, home)
	require.Len(t, away, 1)
	require.Equal(t, StatusUnknown, away[0].Status)
}

func TestTouchDoesNotDisturbExisting(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tr.Set(1, "Ваня", StatusHome, at)
	tr.Touch(1, "Ваня", at.Add(time.Hour))

	home, _ := tr.Snapshot()
	require.Len(t, home, 1)
	require.Equal(t, at, home[0].ChangedAt)
}

func TestSetStatusKeepsRegisteredName(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tr.Set(2, "Ольга", StatusHome, at)
	tr.SetGender(2, feedlog.GenderFemale)

	name := tr.SetStatus(2, "Оля", StatusAway, at.Add(time.Hour))
	require.Equal(t, "Ольга", name)

	_, away := tr.Snapshot()
	require.Len(t, away, 1)
	require.Equal(t, "Ольга", away[0].Name)
	require.Equal(t, feedlog.GenderFemale, away[0].Gender)
	require.Equal(t, at.Add(time.Hour), away[0].ChangedAt)
}

func TestSetStatusRegistersUnknownPerson(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	name := tr.SetStatus(1, "Ваня", StatusHome, at)
	require.Equal(t, "Ваня", name)

	home, _ := tr.Snapshot()
	require.Len(t, home, 1)
	require.Equal(t, "Ваня", home[0].Name)
}

func TestRename(t *testing.T) {
	tr := NewTracker()
	tr.Set(2, "Оля", StatusHome, time.Now())

	tr.Rename(2, "Ольга")
	tr.Rename(404, "никто") // unknown id is a no-op

	home, _ := tr.Snapshot()
	require.Len(t, home, 1)
	require.Equal(t, "Ольга", home[0].Name)
}

func TestNeverInteractedNotShown(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Empty())

	home, away := tr.Snapshot()
	require.Empty(t, home)
	require.Empty(t, away)
}

func TestRemove(t *testing.T) {
	tr := NewTracker()
	tr.Set(1, "Ваня", StatusHome, time.Now())
	tr.Remove(1)

	home, away := tr.Snapshot()
	require.Empty(t, home)
	require.Empty(t, away)
	require.True(t, tr.Empty())
}

func TestGenderTag(t *testing.T) {
	tr := NewTracker()
	tr.Set(2, "Оля", StatusAway, time.Now())
	tr.SetGender(2, feedlog.GenderFemale)

	_, away := tr.Snapshot()
	require.Len(t, away, 1)
	require.Equal(t, feedlog.GenderFemale, away[0].Gender)
}
