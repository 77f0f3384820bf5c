package storage

import (
	"context"
	"time"

	"finman/internal/core"
)

// BalanceSummary is the read-only rollup behind every dashboard
// refresh: spendable balance, savings balance and the current calendar
// month's income, expense and cashflow. It never mutates state.
func (r *Repository) BalanceSummary(ctx context.Context, userID int64) (core.Summary, error) {
	var s core.Summary

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = ? AND type != ?",
		userID, string(core.AccountSavings)).Scan(&s.TotalBalance.Cents)
	if err != nil {
		return s, core.NewStoreError("sum balances", err)
	}

	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = ? AND type = ?",
		userID, string(core.AccountSavings)).Scan(&s.TotalSavings.Cents)
	if err != nil {
		return s, core.NewStoreError("sum savings", err)
	}

	now := r.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE user_id = ? AND type = ? AND created_at >= ?",
		userID, string(core.TxIncome), monthStart.UTC()).Scan(&s.MonthlyIncome.Cents)
	if err != nil {
		return s, core.NewStoreError("sum monthly income", err)
	}

	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE user_id = ? AND type = ? AND created_at >= ?",
		userID, string(core.TxExpense), monthStart.UTC()).Scan(&s.MonthlyExpense.Cents)
	if err != nil {
		return s, core.NewStoreError("sum monthly expense", err)
	}

	s.MonthlyCashflow = s.MonthlyIncome.Sub(s.MonthlyExpense)
	return s, nil
}
