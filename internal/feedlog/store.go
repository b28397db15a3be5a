package feedlog

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNoAccount indicates the referenced account does not exist.
	ErrNoAccount = errors.New("account not found")
)

// Store defines the interface for the durable feeding log and account table.
type Store interface {
	// AppendFeeding adds a new feeding event to the log.
	AppendFeeding(ctx context.Context, event FeedingEvent) error

	// LatestFeeding returns the most recent feeding of the given kind for the
	// given pet in [start, end), or nil when none exists.
	LatestFeeding(ctx context.Context, pet string, kind FoodKind, start, end time.Time) (*FeedingEvent, error)

	// DeleteAllFeedings removes every feeding row. Used only by the purge
	// rollover variant.
	DeleteAllFeedings(ctx context.Context) error

	// UpsertAccount creates or refreshes an account. The first account ever
	// created is granted admin rights (bootstrap rule, single use). Existing
	// accounts keep their display name, admin flag, active flag and gender.
	UpsertAccount(ctx context.Context, id int64, username, displayName string) (Account, error)

	// IsAdmin reports whether the account exists, is active, and holds the
	// admin flag. A missing account is simply not an admin.
	IsAdmin(ctx context.Context, id int64) (bool, error)

	// SetAdmin grants the admin flag to an existing account.
	SetAdmin(ctx context.Context, id int64) error

	// Deactivate soft-deletes an account.
	Deactivate(ctx context.Context, id int64) error

	// Rename changes an account's display name and rewrites the feeder name
	// on all historical feeding rows by that feeder.
	Rename(ctx context.Context, id int64, newName string) error

	// SetGender updates the grammatical gender tag of an account.
	SetGender(ctx context.Context, id int64, g Gender) error

	// ListAccounts returns all accounts ordered by creation.
	ListAccounts(ctx context.Context) ([]Account, error)

	// Close closes the store and releases resources.
	Close() error
}
