package feedlog

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	boterrors "git.home.luguber.info/inful/homebot/internal/errors"
)

// storageErr classifies a low-level database failure for callers that branch
// on error category.
func storageErr(err error, message string) error {
	return boterrors.Wrap(err, boterrors.CategoryStorage, boterrors.SeverityError, message)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, boterrors.Wrap(err, boterrors.CategoryStorage, boterrors.SeverityFatal, "open sqlite database")
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, boterrors.Wrap(err, boterrors.CategoryStorage, boterrors.SeverityFatal, "initialize schema")
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedings (
		id TEXT PRIMARY KEY,
		pet TEXT NOT NULL,
		kind TEXT NOT NULL,
		at INTEGER NOT NULL,
		feeder_id INTEGER NOT NULL,
		feeder_name TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedings_pet_kind_at ON feedings(pet, kind, at);
	CREATE INDEX IF NOT EXISTS idx_feedings_feeder ON feedings(feeder_id);

	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		admin INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		gender TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendFeeding adds a new feeding event to the log.
func (s *SQLiteStore) AppendFeeding(ctx context.Context, event FeedingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO feedings (id, pet, kind, at, feeder_id, feeder_name) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Pet, string(event.Kind), event.At.UTC().Unix(), event.FeederID, event.FeederName,
	)
	if err != nil {
		return storageErr(err, "insert feeding")
	}
	return nil
}

// LatestFeeding returns the most recent feeding for (pet, kind) in [start, end).
func (s *SQLiteStore) LatestFeeding(ctx context.Context, pet string, kind FoodKind, start, end time.Time) (*FeedingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, pet, kind, at, feeder_id, feeder_name FROM feedings
		 WHERE pet = ? AND kind = ? AND at >= ? AND at < ?
		 ORDER BY at DESC, rowid DESC LIMIT 1`,
		pet, string(kind), start.UTC().Unix(), end.UTC().Unix(),
	)

	var e FeedingEvent
	var atUnix int64
	var kindRaw string
	err := row.Scan(&e.ID, &e.Pet, &kindRaw, &atUnix, &e.FeederID, &e.FeederName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "query latest feeding")
	}
	e.Kind = FoodKind(kindRaw)
	e.At = time.Unix(atUnix, 0).UTC()
	return &e, nil
}

// DeleteAllFeedings removes every feeding row.
func (s *SQLiteStore) DeleteAllFeedings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM feedings"); err != nil {
		return storageErr(err, "delete feedings")
	}
	return nil
}

// UpsertAccount creates or refreshes an account. The very first account wins
// the admin bootstrap; everyone after that starts as a regular member.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, id int64, username, displayName string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, storageErr(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	var existing Account
	var admin, active int
	row := tx.QueryRowContext(ctx,
		"SELECT id, username, display_name, admin, active, gender, created_at FROM accounts WHERE id = ?", id)
	var createdUnix int64
	err = row.Scan(&existing.ID, &existing.Username, &existing.DisplayName, &admin, &active, &existing.Gender, &createdUnix)
	switch {
	case err == sql.ErrNoRows:
		var admins int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE admin = 1").Scan(&admins); err != nil {
			return Account{}, storageErr(err, "count admins")
		}
		now := time.Now().UTC()
		isAdmin := 0
		if admins == 0 {
			isAdmin = 1
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (id, username, display_name, admin, active, gender, created_at) VALUES (?, ?, ?, ?, 1, '', ?)",
			id, username, displayName, isAdmin, now.Unix(),
		); err != nil {
			return Account{}, storageErr(err, "insert account")
		}
		existing = Account{
			ID: id, Username: username, DisplayName: displayName,
			Admin: isAdmin == 1, Active: true, CreatedAt: now,
		}
	case err != nil:
		return Account{}, storageErr(err, "query account")
	default:
		// Username tracks the chat platform; display name, flags and gender
		// are owned by admin commands and stay as they are.
		if _, err := tx.ExecContext(ctx, "UPDATE accounts SET username = ? WHERE id = ?", username, id); err != nil {
			return Account{}, storageErr(err, "update account")
		}
		existing.Username = username
		existing.Admin = admin == 1
		existing.Active = active == 1
		existing.CreatedAt = time.Unix(createdUnix, 0).UTC()
	}

	if err := tx.Commit(); err != nil {
		return Account{}, storageErr(err, "commit")
	}
	return existing, nil
}

// IsAdmin reports whether the account is active and holds the admin flag.
func (s *SQLiteStore) IsAdmin(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var admin, active int
	err := s.db.QueryRowContext(ctx, "SELECT admin, active FROM accounts WHERE id = ?", id).Scan(&admin, &active)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err, "query account")
	}
	return admin == 1 && active == 1, nil
}

// SetAdmin grants the admin flag to an existing account.
func (s *SQLiteStore) SetAdmin(ctx context.Context, id int64) error {
	return s.updateAccount(ctx, "UPDATE accounts SET admin = 1 WHERE id = ?", id)
}

// Deactivate soft-deletes an account.
func (s *SQLiteStore) Deactivate(ctx context.Context, id int64) error {
	return s.updateAccount(ctx, "UPDATE accounts SET active = 0 WHERE id = ?", id)
}

// SetGender updates the grammatical gender tag of an account.
func (s *SQLiteStore) SetGender(ctx context.Context, id int64, g Gender) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE accounts SET gender = ? WHERE id = ?", string(g), id)
	if err != nil {
		return storageErr(err, "update gender")
	}
	return requireRow(res)
}

// Rename changes the display name and repairs the denormalized feeder name
// on all historical feeding rows by that feeder.
func (s *SQLiteStore) Rename(ctx context.Context, id int64, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE accounts SET display_name = ? WHERE id = ?", newName, id)
	if err != nil {
		return storageErr(err, "update account name")
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE feedings SET feeder_name = ? WHERE feeder_id = ?", newName, id); err != nil {
		return storageErr(err, "rewrite feeding rows")
	}
	return tx.Commit()
}

// ListAccounts returns all accounts ordered by creation.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, display_name, admin, active, gender, created_at FROM accounts ORDER BY created_at, id")
	if err != nil {
		return nil, storageErr(err, "query accounts")
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		var admin, active int
		var createdUnix int64
		if err := rows.Scan(&a.ID, &a.Username, &a.DisplayName, &admin, &active, &a.Gender, &createdUnix); err != nil {
			return nil, storageErr(err, "scan account")
		}
		a.Admin = admin == 1
		a.Active = active == 1
		a.CreatedAt = time.Unix(createdUnix, 0).UTC()
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate rows")
	}
	return accounts, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *SQLiteStore) updateAccount(ctx context.Context, query string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return storageErr(err, "update account")
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err, "rows affected")
	}
	if n == 0 {
		return ErrNoAccount
	}
	return nil
}
