package core

import "time"

// Summary is the balance rollup consumed by presentation layers.
// Savings balances are reported separately so they are not counted as
// spendable money.
type Summary struct {
	TotalBalance    Money
	TotalSavings    Money
	MonthlyIncome   Money
	MonthlyExpense  Money
	MonthlyCashflow Money
}

// BudgetView is an active budget with its derived spending figures.
// Spent is computed from the ledger, never stored.
type BudgetView struct {
	BudgetID      int64
	UserID        int64
	CategoryID    int64
	CategoryName  string
	Amount        Money
	Spent         Money
	Remaining     Money
	SpentPct      float64
	Period        BudgetPeriod
	StartDate     time.Time
	EndDate       time.Time
	OverThreshold bool
	DaysRemaining int
}

// TransactionView is a ledger row joined with its display names.
type TransactionView struct {
	ID            int64
	UserID        int64
	AccountID     int64
	AccountName   string
	CategoryID    int64
	CategoryName  string
	Amount        Money
	Description   string
	Type          TransactionType
	ToAccountID   int64
	ToAccountName string
	CreatedAt     time.Time
}

// BudgetWarning is the advisory projection returned when a prospective
// expense would push category spending past the approach threshold.
type BudgetWarning struct {
	CategoryName string
	BudgetAmount Money
	CurrentSpent Money
	NewTotal     Money
	PctUsed      float64
	Remaining    Money // negative once the budget is blown
}

// BudgetExceeded is returned when the prospective new total would
// strictly exceed the budget amount.
type BudgetExceeded struct {
	CategoryName string
	BudgetAmount Money
	CurrentSpent Money
	NewTotal     Money
	ExceededBy   Money
}
