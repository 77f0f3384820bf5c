package storage

import (
	"context"
	"database/sql"
	"log/slog"

	"finman/internal/core"
)

// CreateTransaction is the ledger writer: it validates the entry, then
// inside one physical transaction checks funds, inserts the immutable
// ledger row, applies the balance deltas and resyncs any saving goal
// backed by a touched account. Everything commits or rolls back as a
// unit; partial writes are never observable.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(r.rules); err != nil {
		return 0, err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, core.NewStoreError("begin transaction", err)
	}
	defer tx.Rollback()

	// The category reference is resolved here rather than left to the
	// foreign key, so an unknown category reads as a validation failure.
	if t.CategoryID > 0 {
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM categories WHERE id = ? AND user_id = ?", t.CategoryID, t.UserID).Scan(&one)
		if err == sql.ErrNoRows {
			return 0, core.NewValidationError("category not found")
		}
		if err != nil {
			return 0, core.NewStoreError("look up category", err)
		}
	}

	// Funds check happens inside the physical transaction so the read
	// balance cannot go stale before the debit below.
	if t.Type == core.TxExpense || t.Type == core.TxTransfer {
		var balance int64
		err := tx.QueryRowContext(ctx,
			"SELECT balance_cents FROM accounts WHERE id = ?", t.AccountID).Scan(&balance)
		if err == sql.ErrNoRows {
			return 0, core.NewValidationError("source account not found")
		}
		if err != nil {
			return 0, core.NewStoreError("read source balance", err)
		}
		if t.Amount.Cents > balance {
			return 0, &core.InsufficientFundsError{
				Available: core.Money{Cents: balance},
				Required:  t.Amount,
			}
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, category_id, amount_cents, description, type, to_account_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, nullableID(t.CategoryID), t.Amount.Cents,
		t.Description, string(t.Type), nullableID(t.ToAccountID), t.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, core.NewStoreError("insert ledger row", err)
	}
	transactionID, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStoreError("read transaction id", err)
	}

	var touched []int64
	switch t.Type {
	case core.TxIncome:
		if err := applyDelta(ctx, tx, t.AccountID, t.Amount.Cents); err != nil {
			return 0, err
		}
		touched = []int64{t.AccountID}
	case core.TxExpense:
		if err := applyDelta(ctx, tx, t.AccountID, -t.Amount.Cents); err != nil {
			return 0, err
		}
		touched = []int64{t.AccountID}
	case core.TxTransfer:
		if err := applyDelta(ctx, tx, t.AccountID, -t.Amount.Cents); err != nil {
			return 0, err
		}
		if err := applyDelta(ctx, tx, t.ToAccountID, t.Amount.Cents); err != nil {
			return 0, err
		}
		touched = []int64{t.AccountID, t.ToAccountID}
	}

	// Once per touched account: a transfer between two goal-backed
	// accounts resyncs both goals.
	for _, accountID := range touched {
		if err := syncGoalForAccount(ctx, tx, accountID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, core.NewStoreError("commit transaction", err)
	}

	slog.InfoContext(ctx, "transaction recorded",
		"transaction_id", transactionID,
		"user_id", t.UserID,
		"type", t.Type,
		"amount", t.Amount.String())
	return transactionID, nil
}

func applyDelta(ctx context.Context, tx *sql.Tx, accountID, deltaCents int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?", deltaCents, accountID)
	if err != nil {
		return core.NewStoreError("update balance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStoreError("update balance", err)
	}
	if n == 0 {
		return core.NewValidationError("account not found")
	}
	return nil
}

// syncGoalForAccount keeps a saving goal's current amount equal to its
// backing account's balance. The balance is read inside the caller's
// physical transaction, so it reflects the just-applied delta. No-op
// when the account backs no goal.
func syncGoalForAccount(ctx context.Context, tx *sql.Tx, accountID int64) error {
	var goalID, balance int64
	err := tx.QueryRowContext(ctx,
		`SELECT sg.id, a.balance_cents
		 FROM saving_goals sg
		 INNER JOIN accounts a ON sg.account_id = a.id
		 WHERE a.id = ?`, accountID).Scan(&goalID, &balance)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return core.NewStoreError("look up saving goal", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE saving_goals SET current_cents = ? WHERE id = ?", balance, goalID); err != nil {
		return core.NewStoreError("sync saving goal", err)
	}
	return nil
}

// ListTransactions returns the user's newest ledger rows joined with
// their account and category display names. A deleted category leaves
// an empty name, the row itself is never dropped.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, limit int) ([]core.TransactionView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.account_id, COALESCE(a.name, ''),
		        t.category_id, COALESCE(c.name, ''),
		        t.amount_cents, t.description, t.type,
		        t.to_account_id, COALESCE(ta.name, ''), t.created_at
		 FROM transactions t
		 LEFT JOIN accounts a ON t.account_id = a.id
		 LEFT JOIN categories c ON t.category_id = c.id
		 LEFT JOIN accounts ta ON t.to_account_id = ta.id
		 WHERE t.user_id = ?
		 ORDER BY t.created_at DESC, t.id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, core.NewStoreError("list transactions", err)
	}
	defer rows.Close()

	var views []core.TransactionView
	for rows.Next() {
		var v core.TransactionView
		var categoryID, toAccountID sql.NullInt64
		if err := rows.Scan(&v.ID, &v.UserID, &v.AccountID, &v.AccountName,
			&categoryID, &v.CategoryName,
			&v.Amount.Cents, &v.Description, &v.Type,
			&toAccountID, &v.ToAccountName, &v.CreatedAt); err != nil {
			return nil, core.NewStoreError("scan transaction", err)
		}
		v.CategoryID = categoryID.Int64
		v.ToAccountID = toAccountID.Int64
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list transactions", err)
	}
	return views, nil
}
