package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/homebot/internal/config"
	"git.home.luguber.info/inful/homebot/internal/feedlog"
)

func testRoster() []config.Pet {
	return config.DefaultPets()
}

func newCacheWithStore(t *testing.T, policy config.RolloverPolicy) (*DailyCache, *feedlog.SQLiteStore) {
	t.Helper()
	store, err := feedlog.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewDailyCache(store, testRoster(), time.UTC, policy), store
}

func findPet(t *testing.T, snapshot []PetState, key string) PetState {
	t.Helper()
	for _, ps := range snapshot {
		if ps.Key == key {
			return ps
		}
	}
	t.Fatalf("pet %s not in snapshot", key)
	return PetState{}
}

func TestRecordLastWriteWins(t *testing.T) {
	cache := NewDailyCache(nil, testRoster(), time.UTC, config.RolloverPreserve)

	t1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)

	t.Run("in timestamp order", func(t *testing.T) {
		cache.Record("cassiy", feedlog.FoodDry, t1, "Ваня")
		cache.Record("cassiy", feedlog.FoodDry, t2, "Оля")

		ps := findPet(t, cache.Snapshot(), "cassiy")
		require.NotNil(t, ps.Dry)
		require.Equal(t, "Оля", ps.Dry.Feeder)
		require.Equal(t, t2, ps.Dry.At)
	})

	t.Run("out of timestamp order the last call still wins", func(t *testing.T) {
		cache.Record("cassiy", feedlog.FoodDry, t2, "Оля")
		cache.Record("cassiy", feedlog.FoodDry, t1, "Ваня")

		ps := findPet(t, cache.Snapshot(), "cassiy")
		require.NotNil(t, ps.Dry)
		require.Equal(t, "Ваня", ps.Dry.Feeder)
		require.Equal(t, t1, ps.Dry.At)
	})
}

func TestSlotsAreIndependent(t *testing.T) {
	cache := NewDailyCache(nil, testRoster(), time.UTC, config.RolloverPreserve)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cache.Record("cassiy", feedlog.FoodDry, at, "Ваня")
	cache.Record("cassiy", feedlog.FoodWet, at.Add(5*time.Minute), "Оля")

	ps := findPet(t, cache.Snapshot(), "cassiy")
	require.NotNil(t, ps.Dry)
	require.NotNil(t, ps.Wet)
	require.Equal(t, "Ваня", ps.Dry.Feeder)
	require.Equal(t, "Оля", ps.Wet.Feeder)

	// Feeding dry again overwrites only the dry slot.
	cache.Record("cassiy", feedlog.FoodDry, at.Add(10*time.Minute), "Петя")
	ps = findPet(t, cache.Snapshot(), "cassiy")
	require.Equal(t, "Петя", ps.Dry.Feeder)
	require.Equal(t, "Оля", ps.Wet.Feeder)
}

func TestRebuildFromLogIdempotent(t *testing.T) {
	cache, store := newCacheWithStore(t, config.RolloverPreserve)
	ctx := t.Context()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "cassiy", Kind: feedlog.FoodDry, At: day.Add(9 * time.Hour), FeederID: 1, FeederName: "Ваня",
	}))
	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "cassiy", Kind: feedlog.FoodDry, At: day.Add(12 * time.Hour), FeederID: 2, FeederName: "Оля",
	}))
	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "bulik", Kind: feedlog.FoodWet, At: day.Add(8 * time.Hour), FeederID: 1, FeederName: "Ваня",
	}))

	now := day.Add(15 * time.Hour)
	require.NoError(t, cache.RebuildFromLog(ctx, now))
	first := cache.Snapshot()

	require.NoError(t, cache.RebuildFromLog(ctx, now))
	second := cache.Snapshot()
	require.Equal(t, first, second, "replaying the same log must yield the identical projection")

	cassiy := findPet(t, second, "cassiy")
	require.NotNil(t, cassiy.Dry)
	require.Equal(t, "Оля", cassiy.Dry.Feeder)
	require.Nil(t, cassiy.Wet)

	bulik := findPet(t, second, "bulik")
	require.NotNil(t, bulik.Wet)
	require.Nil(t, bulik.Dry)
}

func TestRebuildDayBoundary(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	store, err := feedlog.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	cache := NewDailyCache(store, testRoster(), loc, config.RolloverPreserve)
	ctx := t.Context()

	// 23:59:59 local on March 10 and 00:00:01 local on March 11.
	lateEvening := time.Date(2025, 3, 10, 23, 59, 59, 0, loc)
	justAfterMidnight := time.Date(2025, 3, 11, 0, 0, 1, 0, loc)

	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "grom", Kind: feedlog.FoodDry, At: lateEvening.UTC(), FeederID: 1, FeederName: "Ваня",
	}))
	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "klava", Kind: feedlog.FoodDry, At: justAfterMidnight.UTC(), FeederID: 2, FeederName: "Оля",
	}))

	// Rebuilt for March 11: the 23:59:59 event is stale, the 00:00:01 one counts.
	require.NoError(t, cache.RebuildFromLog(ctx, time.Date(2025, 3, 11, 10, 0, 0, 0, loc)))
	snapshot := cache.Snapshot()
	require.Nil(t, findPet(t, snapshot, "grom").Dry)
	require.NotNil(t, findPet(t, snapshot, "klava").Dry)

	// Rebuilt for March 10: the picture inverts.
	require.NoError(t, cache.RebuildFromLog(ctx, time.Date(2025, 3, 10, 23, 59, 59, 0, loc)))
	snapshot = cache.Snapshot()
	require.NotNil(t, findPet(t, snapshot, "grom").Dry)
	require.Nil(t, findPet(t, snapshot, "klava").Dry)
}

func TestRolloverPreservesLog(t *testing.T) {
	cache, store := newCacheWithStore(t, config.RolloverPreserve)
	ctx := t.Context()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "cassiy", Kind: feedlog.FoodDry, At: day.Add(9 * time.Hour), FeederID: 1, FeederName: "Ваня",
	}))
	cache.Record("cassiy", feedlog.FoodDry, day.Add(9*time.Hour), "Ваня")

	require.NoError(t, cache.Rollover(ctx))

	for _, ps := range cache.Snapshot() {
		require.Nil(t, ps.Dry)
		require.Nil(t, ps.Wet)
	}

	// Log rows survive under the preserve policy.
	latest, err := store.LatestFeeding(ctx, "cassiy", feedlog.FoodDry, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NotNil(t, latest)
}

func TestRolloverPurgesLog(t *testing.T) {
	cache, store := newCacheWithStore(t, config.RolloverPurge)
	ctx := t.Context()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendFeeding(ctx, feedlog.FeedingEvent{
		Pet: "cassiy", Kind: feedlog.FoodDry, At: day.Add(9 * time.Hour), FeederID: 1, FeederName: "Ваня",
	}))
	cache.Record("cassiy", feedlog.FoodDry, day.Add(9*time.Hour), "Ваня")

	require.NoError(t, cache.Rollover(ctx))

	latest, err := store.LatestFeeding(ctx, "cassiy", feedlog.FoodDry, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Nil(t, latest, "purge policy deletes all log rows")
}

func TestSetRosterDropsRemovedPets(t *testing.T) {
	cache := NewDailyCache(nil, testRoster(), time.UTC, config.RolloverPreserve)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cache.Record("cassiy", feedlog.FoodDry, at, "Ваня")
	cache.Record("grom", feedlog.FoodDry, at, "Ваня")

	cache.SetRoster([]config.Pet{{Key: "cassiy", Label: "⚫ Кассий", WetEligible: true}})

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 1)
	require.NotNil(t, snapshot[0].Dry)
}

func TestDayWindow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	// 22:30 UTC on March 10 is already March 11 in Moscow.
	now := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)
	start, end := DayWindow(now, loc)
	require.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, loc), start)
	require.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, loc), end)
}
