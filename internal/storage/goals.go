package storage

import (
	"context"
	"database/sql"
	"log/slog"

	"finman/internal/core"
)

// CreateSavingGoal creates the goal together with its backing Savings
// account ("<name> Fund") in one physical transaction. The account
// starts at the goal's current amount.
func (r *Repository) CreateSavingGoal(ctx context.Context, g core.SavingGoal) (int64, error) {
	if err := g.Validate(r.rules); err != nil {
		return 0, err
	}
	created := g.CreatedAt
	if created.IsZero() {
		created = r.now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, core.NewStoreError("begin create saving goal", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (user_id, name, balance_cents, type) VALUES (?, ?, ?, ?)",
		g.UserID, g.Name+" Fund", g.Current.Cents, string(core.AccountSavings),
	)
	if err != nil {
		return 0, core.NewStoreError("insert goal account", err)
	}
	accountID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read goal account id", err)
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO saving_goals (user_id, name, target_cents, current_cents, account_id, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Target.Cents, g.Current.Cents, accountID, g.IsDefault, created.UTC(),
	)
	if err != nil {
		return 0, core.NewStoreError("insert saving goal", err)
	}
	goalID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read saving goal id", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, core.NewStoreError("commit create saving goal", err)
	}

	slog.InfoContext(ctx, "saving goal created",
		"goal_id", goalID, "user_id", g.UserID, "account_id", accountID)
	return goalID, nil
}

// ListSavingGoals returns the user's goals, default goal first, then
// by creation date.
func (r *Repository) ListSavingGoals(ctx context.Context, userID int64) ([]core.SavingGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, COALESCE(account_id, 0), is_default, created_at
		 FROM saving_goals
		 WHERE user_id = ?
		 ORDER BY is_default DESC, created_at ASC`, userID)
	if err != nil {
		return nil, core.NewStoreError("list saving goals", err)
	}
	defer rows.Close()

	var goals []core.SavingGoal
	for rows.Next() {
		var g core.SavingGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Target.Cents, &g.Current.Cents,
			&g.AccountID, &g.IsDefault, &g.CreatedAt); err != nil {
			return nil, core.NewStoreError("scan saving goal", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list saving goals", err)
	}
	return goals, nil
}

// UpdateSavingGoalAmount overwrites the goal's current amount. Used by
// presentation flows that adjust a goal directly; ledger writes keep
// the amount synced on their own.
func (r *Repository) UpdateSavingGoalAmount(ctx context.Context, goalID int64, amount core.Money) (bool, error) {
	if amount.IsNegative() {
		return false, core.NewValidationError("current amount cannot be negative")
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE saving_goals SET current_cents = ? WHERE id = ?", amount.Cents, goalID)
	if err != nil {
		return false, core.NewStoreError("update saving goal amount", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStoreError("update saving goal amount", err)
	}
	return n > 0, nil
}

// DeleteSavingGoal removes the goal and its backing account as one
// physical transaction. Returns false when the goal does not belong to
// the user.
func (r *Repository) DeleteSavingGoal(ctx context.Context, goalID, userID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, core.NewStoreError("begin delete saving goal", err)
	}
	defer tx.Rollback()

	var accountID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT account_id FROM saving_goals WHERE id = ? AND user_id = ?", goalID, userID).Scan(&accountID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, core.NewStoreError("look up saving goal", err)
	}

	// Goal first: its account reference cascades on account deletion,
	// but the explicit order matches the ownership direction.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM saving_goals WHERE id = ? AND user_id = ?", goalID, userID); err != nil {
		return false, core.NewStoreError("delete saving goal", err)
	}
	if accountID.Valid {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM accounts WHERE id = ? AND user_id = ?", accountID.Int64, userID); err != nil {
			return false, core.NewStoreError("delete goal account", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, core.NewStoreError("commit delete saving goal", err)
	}

	slog.InfoContext(ctx, "saving goal deleted", "goal_id", goalID, "user_id", userID)
	return true, nil
}

// ListSavingAccounts returns accounts that back a goal, default goal
// first.
func (r *Repository) ListSavingAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, a.name, a.balance_cents, a.type
		 FROM accounts a
		 INNER JOIN saving_goals sg ON a.id = sg.account_id
		 WHERE a.user_id = ?
		 ORDER BY sg.is_default DESC, sg.created_at ASC`, userID)
	if err != nil {
		return nil, core.NewStoreError("list saving accounts", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// ListRegularAccounts returns accounts not backing any goal.
func (r *Repository) ListRegularAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, a.name, a.balance_cents, a.type
		 FROM accounts a
		 LEFT JOIN saving_goals sg ON a.id = sg.account_id
		 WHERE a.user_id = ? AND sg.account_id IS NULL
		 ORDER BY a.id`, userID)
	if err != nil {
		return nil, core.NewStoreError("list regular accounts", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}
