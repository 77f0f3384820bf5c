// Package storage is the persistence layer of the ledger engine: an
// embedded SQLite store owned by a single process, with a versioned
// schema and an atomic multi-table commit protocol for ledger writes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finman/internal/core"

	_ "modernc.org/sqlite"
)

// Repository owns the store handle. All limits and seed data arrive
// through Options at construction; nothing is read from globals.
type Repository struct {
	db          *sql.DB
	rules       core.Rules
	maxAccounts int
	seed        Seed
	now         func() time.Time
}

// Options configures a Repository.
type Options struct {
	Rules              core.Rules
	MaxAccountsPerUser int
	Seed               Seed
	Now                func() time.Time // swappable clock for tests
}

// Seed is the data created for every new user, inside the same
// physical transaction as the user row itself.
type Seed struct {
	Accounts   []SeedAccount
	Categories []SeedCategory
	GoalName   string
	GoalTarget core.Money
}

type SeedAccount struct {
	Name string
	Type core.AccountType
}

type SeedCategory struct {
	Name string
	Type core.CategoryType
}

// DefaultSeed returns the starter accounts, categories and saving goal
// every fresh registration receives.
func DefaultSeed() Seed {
	return Seed{
		Accounts: []SeedAccount{
			{Name: "My Bank Account", Type: core.AccountBank},
			{Name: "Cash Wallet", Type: core.AccountCash},
		},
		Categories: []SeedCategory{
			{Name: "Food & Drink", Type: core.CategoryExpense},
			{Name: "Transport", Type: core.CategoryExpense},
			{Name: "Salary", Type: core.CategoryIncome},
			{Name: "Education", Type: core.CategoryExpense},
			{Name: "Entertainment", Type: core.CategoryExpense},
		},
		GoalName: "Saving is a good Habit",
	}
}

// DefaultOptions fills in production defaults for any zero field.
func DefaultOptions() Options {
	return Options{
		Rules:              core.DefaultRules(),
		MaxAccountsPerUser: 5,
		Seed:               DefaultSeed(),
		Now:                time.Now,
	}
}

// Open opens (creating if necessary) the store at dbPath and brings
// its schema up to date. Pass ":memory:" for an in-memory store.
func Open(dbPath string, opts Options) (*Repository, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One physical connection, one physical transaction at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rules == (core.Rules{}) {
		opts.Rules = core.DefaultRules()
	}
	if opts.MaxAccountsPerUser == 0 {
		opts.MaxAccountsPerUser = DefaultOptions().MaxAccountsPerUser
	}

	return &Repository{
		db:          db,
		rules:       opts.Rules,
		maxAccounts: opts.MaxAccountsPerUser,
		seed:        opts.Seed,
		now:         opts.Now,
	}, nil
}

func dsn(path string) string {
	const params = "?_pragma=foreign_keys(1)&_time_format=sqlite"
	if path == ":memory:" {
		return "file::memory:" + params
	}
	return "file:" + path + params
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UserRecord is a user row together with its stored credential pair.
type UserRecord struct {
	User         core.User
	PasswordHash string
	Salt         string
}

// CreateUser inserts the user and seeds its default accounts,
// categories and saving goal as one physical transaction. The password
// must already be hashed by the caller.
func (r *Repository) CreateUser(ctx context.Context, u core.User, passwordHash, salt string) (int64, error) {
	if err := u.Validate(r.rules); err != nil {
		return 0, err
	}
	joined := u.JoinedAt
	if joined.IsZero() {
		joined = r.now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, core.NewStoreError("begin create user", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, salt, joined_at) VALUES (?, ?, ?, ?, ?)",
		u.Name, u.Email, passwordHash, salt, joined.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return 0, &core.DuplicateEmailError{Email: u.Email}
		}
		return 0, core.NewStoreError("insert user", err)
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read user id", err)
	}

	if err := r.seedUserData(ctx, tx, userID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, core.NewStoreError("commit create user", err)
	}

	slog.InfoContext(ctx, "user created", "user_id", userID, "email", u.Email)
	return userID, nil
}

func (r *Repository) seedUserData(ctx context.Context, tx *sql.Tx, userID int64) error {
	for _, a := range r.seed.Accounts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (user_id, name, balance_cents, type) VALUES (?, ?, 0, ?)",
			userID, a.Name, string(a.Type),
		)
		if err != nil {
			return core.NewStoreError("seed account", err)
		}
	}
	for _, c := range r.seed.Categories {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO categories (user_id, name, type) VALUES (?, ?, ?)",
			userID, c.Name, string(c.Type),
		)
		if err != nil {
			return core.NewStoreError("seed category", err)
		}
	}
	if r.seed.GoalName == "" {
		return nil
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (user_id, name, balance_cents, type) VALUES (?, ?, 0, ?)",
		userID, r.seed.GoalName+" Fund", string(core.AccountSavings),
	)
	if err != nil {
		return core.NewStoreError("seed goal account", err)
	}
	accountID, err := res.LastInsertId()
	if err != nil {
		return core.NewStoreError("read seed account id", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO saving_goals (user_id, name, target_cents, current_cents, account_id, is_default, created_at) VALUES (?, ?, ?, 0, ?, 1, ?)",
		userID, r.seed.GoalName, r.seed.GoalTarget.Cents, accountID, r.now().UTC(),
	)
	if err != nil {
		return core.NewStoreError("seed saving goal", err)
	}
	return nil
}

// GetUser returns a user by id, nil when absent.
func (r *Repository) GetUser(ctx context.Context, userID int64) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, joined_at FROM users WHERE id = ?", userID)

	var u core.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.JoinedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, core.NewStoreError("get user", err)
	}
	return &u, nil
}

// GetUserByEmail returns the user with its credential pair, nil when
// no user holds the address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, salt, joined_at FROM users WHERE email = ?", email)

	var rec UserRecord
	if err := row.Scan(&rec.User.ID, &rec.User.Name, &rec.User.Email,
		&rec.PasswordHash, &rec.Salt, &rec.User.JoinedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, core.NewStoreError("get user by email", err)
	}
	return &rec, nil
}

// CreateAccount validates the account, enforces the per-user account
// limit and inserts, all inside one physical transaction so the count
// cannot go stale between check and insert.
func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	if err := a.Validate(r.rules); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, core.NewStoreError("begin create account", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE user_id = ?", a.UserID).Scan(&count); err != nil {
		return 0, core.NewStoreError("count accounts", err)
	}
	if count >= r.maxAccounts {
		return 0, core.NewValidationError(fmt.Sprintf("maximum %d accounts allowed per user", r.maxAccounts))
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (user_id, name, balance_cents, type) VALUES (?, ?, ?, ?)",
		a.UserID, a.Name, a.Balance.Cents, string(a.Type),
	)
	if err != nil {
		return 0, core.NewStoreError("insert account", err)
	}
	accountID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read account id", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, core.NewStoreError("commit create account", err)
	}

	slog.InfoContext(ctx, "account created", "account_id", accountID, "user_id", a.UserID, "type", a.Type)
	return accountID, nil
}

// ListAccounts returns every account of the user, oldest first.
func (r *Repository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, balance_cents, type FROM accounts WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, core.NewStoreError("list accounts", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// GetAccount returns an account by id, nil when absent.
func (r *Repository) GetAccount(ctx context.Context, accountID int64) (*core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, balance_cents, type FROM accounts WHERE id = ?", accountID)

	var a core.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Balance.Cents, &a.Type); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, core.NewStoreError("get account", err)
	}
	return &a, nil
}

// DeleteAccount removes the user's account. Ledger rows referencing it
// cascade away with it.
func (r *Repository) DeleteAccount(ctx context.Context, accountID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM accounts WHERE id = ? AND user_id = ?", accountID, userID)
	if err != nil {
		return false, core.NewStoreError("delete account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStoreError("delete account", err)
	}
	return n > 0, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	if err := c.Validate(r.rules); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, type) VALUES (?, ?, ?)",
		c.UserID, c.Name, string(c.Type),
	)
	if err != nil {
		return 0, core.NewStoreError("insert category", err)
	}
	categoryID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read category id", err)
	}

	slog.InfoContext(ctx, "category created", "category_id", categoryID, "user_id", c.UserID, "type", c.Type)
	return categoryID, nil
}

// ListCategories returns the user's categories grouped by type.
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, type FROM categories WHERE user_id = ? ORDER BY type, name", userID)
	if err != nil {
		return nil, core.NewStoreError("list categories", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type); err != nil {
			return nil, core.NewStoreError("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list categories", err)
	}
	return categories, nil
}

// DeleteCategory removes the category; ledger rows keep their history
// with the category reference set to NULL.
func (r *Repository) DeleteCategory(ctx context.Context, categoryID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ?", categoryID, userID)
	if err != nil {
		return false, core.NewStoreError("delete category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStoreError("delete category", err)
	}
	return n > 0, nil
}

func scanAccounts(rows *sql.Rows) ([]core.Account, error) {
	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Balance.Cents, &a.Type); err != nil {
			return nil, core.NewStoreError("scan account", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("scan accounts", err)
	}
	return accounts, nil
}

// nullableID maps the domain's 0-means-absent ids to SQL NULL.
func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
