package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// bootstrap makes Ваня the first (admin) account and Оля a regular one.
func bootstrap(t *testing.T, f *fixture) {
	t.Helper()
	ctx := t.Context()

	in := ivan()
	in.IsStart = true
	f.service.Handle(ctx, in)

	in = olya()
	in.IsStart = true
	f.service.Handle(ctx, in)
}

func TestAdminCommandsRequireDatabase(t *testing.T) {
	f := newFixture(t, false)

	reply := f.service.Handle(t.Context(), withText(ivan(), "/users"))
	require.Equal(t, msgNoDatabase, reply.Text)
}

func TestAdminGateFailsClosed(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	t.Run("non-admin denied", func(t *testing.T) {
		reply := f.service.Handle(ctx, withText(olya(), "/users"))
		require.Equal(t, msgAdminOnly, reply.Text)
	})

	t.Run("unknown user denied", func(t *testing.T) {
		stranger := Inbound{UserID: 999, Username: "x", FirstName: "X", Text: "/setadmin 200"}
		reply := f.service.Handle(ctx, stranger)
		require.Equal(t, msgAdminOnly, reply.Text)
	})

	t.Run("deactivated admin denied", func(t *testing.T) {
		require.NoError(t, f.store.Deactivate(ctx, 100))
		reply := f.service.Handle(ctx, withText(ivan(), "/users"))
		require.Equal(t, msgAdminOnly, reply.Text)
	})
}

func TestListUsers(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)

	reply := f.service.Handle(t.Context(), withText(ivan(), "/users"))
	require.True(t, reply.Markdown)
	require.Contains(t, reply.Text, "@ivan")
	require.Contains(t, reply.Text, "👑")
	require.Contains(t, reply.Text, "@olya")
}

func TestSetAdmin(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	reply := f.service.Handle(ctx, withText(ivan(), "/setadmin 200"))
	require.Equal(t, msgDone, reply.Text)

	ok, err := f.store.IsAdmin(ctx, 200)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMalformedAdminArguments(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	cases := []struct {
		text  string
		usage string
	}{
		{"/setadmin", usageSetAdmin},
		{"/setadmin abc", usageSetAdmin},
		{"/deactivate", usageDeactivate},
		{"/rename 200", usageRename},
		{"/rename abc Имя", usageRename},
		{"/setgender 200 x", usageSetGender},
		{"/setgender abc f", usageSetGender},
	}
	for _, tc := range cases {
		reply := f.service.Handle(ctx, withText(ivan(), tc.text))
		require.Equal(t, tc.usage, reply.Text, "command %q", tc.text)
	}
}

func TestAdminOpsOnMissingAccount(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)

	reply := f.service.Handle(t.Context(), withText(ivan(), "/setadmin 404"))
	require.Equal(t, msgNoSuchAccount, reply.Text)
}

func TestDeactivateRemovesPresence(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	// Оля is home after /start.
	home, _ := f.tracker.Snapshot()
	require.Len(t, home, 2)

	reply := f.service.Handle(ctx, withText(ivan(), "/deactivate 200"))
	require.Equal(t, msgDone, reply.Text)

	home, away := f.tracker.Snapshot()
	require.Len(t, home, 1)
	require.Empty(t, away)

	// Soft delete: the row remains, inactive.
	accounts, err := f.store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}

func TestRenameRepairsHistoryAndProjection(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	f.service.Handle(ctx, withText(ivan(), "⚫ Кассий 🍖"))

	reply := f.service.Handle(ctx, withText(ivan(), "/rename 100 Иван"))
	require.Equal(t, msgDone, reply.Text)

	status := f.service.Handle(ctx, withText(ivan(), btnCatsStatus))
	require.Contains(t, status.Text, "(Иван)")
	require.NotContains(t, status.Text, "(Ваня)")
}

func TestRenameUpdatesLivePresence(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	f.service.Handle(ctx, withText(olya(), btnHome))
	f.service.Handle(ctx, withText(ivan(), "/rename 200 Ольга"))

	report := f.service.Handle(ctx, withText(ivan(), btnWhoHome))
	require.Contains(t, report.Text, "Ольга")
	require.NotContains(t, report.Text, "Оля (")
}

func TestSetGenderAffectsPhrasing(t *testing.T) {
	f := newFixture(t, true)
	bootstrap(t, f)
	ctx := t.Context()

	reply := f.service.Handle(ctx, withText(ivan(), "/setgender 200 f"))
	require.Equal(t, msgDone, reply.Text)

	f.service.Handle(ctx, withText(olya(), btnAway))
	report := f.service.Handle(ctx, withText(ivan(), btnWhoHome))
	require.Contains(t, report.Text, "Оля (ушла в")
}
