package storage

import (
	"context"
	"database/sql"
	"log/slog"

	"finman/internal/core"
)

// BudgetSpending is a budget row paired with its computed spending.
// Spent is derived from the ledger at query time and never stored.
type BudgetSpending struct {
	Budget       core.Budget
	CategoryName string
	Spent        core.Money
}

// CreateBudget validates and inserts a budget. Start defaults to now
// and the end date is computed from the period when not supplied.
func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	if b.StartDate.IsZero() {
		b.StartDate = r.now()
	}
	if b.EndDate.IsZero() {
		b.EndDate = b.Period.End(b.StartDate)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now()
	}
	if err := b.Validate(r.rules); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount_cents, period, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.Cents, string(b.Period),
		b.StartDate.UTC(), b.EndDate.UTC(), b.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, core.NewStoreError("insert budget", err)
	}
	budgetID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read budget id", err)
	}

	slog.InfoContext(ctx, "budget created",
		"budget_id", budgetID, "user_id", b.UserID, "category_id", b.CategoryID, "period", b.Period)
	return budgetID, nil
}

const budgetSpendingColumns = `
	b.id, b.user_id, b.category_id, b.amount_cents, b.period,
	b.start_date, b.end_date, b.created_at,
	COALESCE(c.name, ''),
	COALESCE(SUM(CASE
	    WHEN t.type = 'Expense'
	    AND t.created_at >= b.start_date
	    AND t.created_at <= b.end_date
	    THEN t.amount_cents
	    ELSE 0
	END), 0)`

// ActiveBudgetsWithSpending returns every non-expired budget of the
// user with the Expense total of its category inside the budget
// window. Ordering of the result is the evaluator's concern.
func (r *Repository) ActiveBudgetsWithSpending(ctx context.Context, userID int64) ([]BudgetSpending, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetSpendingColumns+`
		 FROM budgets b
		 LEFT JOIN categories c ON b.category_id = c.id
		 LEFT JOIN transactions t ON t.category_id = b.category_id AND t.user_id = b.user_id
		 WHERE b.user_id = ? AND b.end_date > ?
		 GROUP BY b.id, c.name`, userID, r.now().UTC())
	if err != nil {
		return nil, core.NewStoreError("list budgets with spending", err)
	}
	defer rows.Close()

	var results []BudgetSpending
	for rows.Next() {
		bs, err := scanBudgetSpending(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list budgets with spending", err)
	}
	return results, nil
}

// ActiveBudgetSpending returns the user's active budget for one
// category with its current spending, nil when none exists.
func (r *Repository) ActiveBudgetSpending(ctx context.Context, userID, categoryID int64) (*BudgetSpending, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetSpendingColumns+`
		 FROM budgets b
		 LEFT JOIN categories c ON b.category_id = c.id
		 LEFT JOIN transactions t ON t.category_id = b.category_id AND t.user_id = b.user_id
		 WHERE b.user_id = ? AND b.category_id = ? AND b.end_date > ?
		 GROUP BY b.id, c.name`, userID, categoryID, r.now().UTC())

	bs, err := scanBudgetSpending(row.Scan)
	if err == errNoBudget {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bs, nil
}

var errNoBudget = sql.ErrNoRows

func scanBudgetSpending(scan func(...any) error) (BudgetSpending, error) {
	var bs BudgetSpending
	err := scan(&bs.Budget.ID, &bs.Budget.UserID, &bs.Budget.CategoryID,
		&bs.Budget.Amount.Cents, &bs.Budget.Period,
		&bs.Budget.StartDate, &bs.Budget.EndDate, &bs.Budget.CreatedAt,
		&bs.CategoryName, &bs.Spent.Cents)
	if err == sql.ErrNoRows {
		return bs, errNoBudget
	}
	if err != nil {
		return bs, core.NewStoreError("scan budget spending", err)
	}
	return bs, nil
}

// DeleteBudget removes the user's budget by id.
func (r *Repository) DeleteBudget(ctx context.Context, budgetID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", budgetID, userID)
	if err != nil {
		return false, core.NewStoreError("delete budget", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStoreError("delete budget", err)
	}
	return n > 0, nil
}

// SweepExpiredBudgets deletes every budget of the user whose window
// has closed and returns how many were removed. Safe to call before
// any read.
func (r *Repository) SweepExpiredBudgets(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE user_id = ? AND end_date <= ?", userID, r.now().UTC())
	if err != nil {
		return 0, core.NewStoreError("sweep expired budgets", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, core.NewStoreError("sweep expired budgets", err)
	}

	if removed > 0 {
		slog.InfoContext(ctx, "expired budgets swept", "user_id", userID, "removed", removed)
	}
	return removed, nil
}
