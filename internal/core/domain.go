package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	AccountBank    AccountType = "Bank"
	AccountCash    AccountType = "Cash"
	AccountSavings AccountType = "Savings"

	CategoryIncome  CategoryType = "Income"
	CategoryExpense CategoryType = "Expense"

	TxIncome   TransactionType = "Income"
	TxExpense  TransactionType = "Expense"
	TxTransfer TransactionType = "Transfer"

	PeriodWeek  BudgetPeriod = "Week"
	PeriodMonth BudgetPeriod = "Month"
	PeriodYear  BudgetPeriod = "Year"
)

type (
	AccountType     string
	CategoryType    string
	TransactionType string
	BudgetPeriod    string

	// Rules carries the validation limits that were process-wide
	// configuration in earlier revisions. Components receive them at
	// construction instead of reading globals.
	Rules struct {
		MaxNameLength        int
		MaxDescriptionLength int
		MinPasswordLength    int
		MaxAmount            Money
	}

	User struct {
		ID       int64
		Name     string
		Email    string
		Password string // plaintext before hashing, never persisted as-is
		JoinedAt time.Time
	}

	Account struct {
		ID      int64
		UserID  int64
		Name    string
		Balance Money
		Type    AccountType
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
		Type   CategoryType
	}

	// Transaction is an immutable ledger entry. CategoryID and
	// ToAccountID use 0 as the absent value; storage maps them to NULL.
	Transaction struct {
		ID          int64
		UserID      int64
		AccountID   int64
		CategoryID  int64
		Amount      Money
		Description string
		Type        TransactionType
		ToAccountID int64
		CreatedAt   time.Time
	}

	SavingGoal struct {
		ID        int64
		UserID    int64
		Name      string
		Target    Money
		Current   Money
		AccountID int64
		IsDefault bool
		CreatedAt time.Time
	}

	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		Period     BudgetPeriod
		StartDate  time.Time
		EndDate    time.Time
		CreatedAt  time.Time
	}
)

// DefaultRules returns the limits the original application shipped with.
func DefaultRules() Rules {
	return Rules{
		MaxNameLength:        100,
		MaxDescriptionLength: 200,
		MinPasswordLength:    6,
		MaxAmount:            Money{Cents: 99_999_999_999}, // 999,999,999.99
	}
}

// End computes the budget end date for a period starting at start.
// Unknown periods fall back to 30 days; Validate rejects them anyway.
func (p BudgetPeriod) End(start time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return start.AddDate(0, 0, 7)
	case PeriodMonth:
		return start.AddDate(0, 1, 0)
	case PeriodYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 30)
	}
}

func (u User) Validate(r Rules) error {
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name is required")
	}
	if len(u.Name) > r.MaxNameLength {
		return NewValidationError(fmt.Sprintf("name must be at most %d characters", r.MaxNameLength))
	}
	if strings.TrimSpace(u.Email) == "" {
		return NewValidationError("email is required")
	}
	if len(u.Password) < r.MinPasswordLength {
		return NewValidationError(fmt.Sprintf("password must be at least %d characters", r.MinPasswordLength))
	}
	return nil
}

func (a Account) Validate(r Rules) error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("account name is required")
	}
	if len(a.Name) > r.MaxNameLength {
		return NewValidationError(fmt.Sprintf("account name must be at most %d characters", r.MaxNameLength))
	}
	switch a.Type {
	case AccountBank, AccountCash, AccountSavings:
	default:
		return NewValidationError("account type must be one of: Bank, Cash, Savings")
	}
	// Enforced at creation time only; the ledger writer guards debits
	// with its own in-transaction funds check.
	if a.Balance.IsNegative() {
		return NewValidationError("account balance cannot be negative")
	}
	if a.UserID <= 0 {
		return NewValidationError("invalid user ID")
	}
	return nil
}

func (c Category) Validate(r Rules) error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("category name is required")
	}
	if len(c.Name) > r.MaxNameLength {
		return NewValidationError(fmt.Sprintf("category name must be at most %d characters", r.MaxNameLength))
	}
	switch c.Type {
	case CategoryIncome, CategoryExpense:
	default:
		return NewValidationError("category type must be one of: Income, Expense")
	}
	if c.UserID <= 0 {
		return NewValidationError("invalid user ID")
	}
	return nil
}

func (t Transaction) Validate(r Rules) error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Amount.GreaterThan(r.MaxAmount) {
		return NewValidationError(fmt.Sprintf("amount cannot exceed %s", r.MaxAmount))
	}
	switch t.Type {
	case TxIncome, TxExpense, TxTransfer:
	default:
		return NewValidationError("transaction type must be one of: Income, Expense, Transfer")
	}
	if t.UserID <= 0 {
		return NewValidationError("invalid user ID")
	}
	if t.AccountID <= 0 {
		return NewValidationError("invalid account ID")
	}
	if (t.Type == TxIncome || t.Type == TxExpense) && t.CategoryID <= 0 {
		return NewValidationError("category is required for income and expense transactions")
	}
	if t.Type == TxTransfer && t.ToAccountID <= 0 {
		return NewValidationError("destination account is required for transfers")
	}
	if t.Type == TxTransfer && t.AccountID == t.ToAccountID {
		return NewValidationError("cannot transfer to the same account")
	}
	if len(t.Description) > r.MaxDescriptionLength {
		return NewValidationError(fmt.Sprintf("description must be at most %d characters", r.MaxDescriptionLength))
	}
	return nil
}

func (g SavingGoal) Validate(r Rules) error {
	if strings.TrimSpace(g.Name) == "" {
		return NewValidationError("goal name is required")
	}
	if len(g.Name) > r.MaxNameLength {
		return NewValidationError(fmt.Sprintf("goal name must be at most %d characters", r.MaxNameLength))
	}
	if g.Target.IsNegative() {
		return NewValidationError("target amount cannot be negative")
	}
	if g.Current.IsNegative() {
		return NewValidationError("current amount cannot be negative")
	}
	if g.UserID <= 0 {
		return NewValidationError("invalid user ID")
	}
	return nil
}

// Completed reports whether the goal has reached a positive target.
func (g SavingGoal) Completed() bool {
	return g.Target.Cents > 0 && g.Current.Cents >= g.Target.Cents
}

func (b Budget) Validate(r Rules) error {
	if err := b.Amount.Validate(); err != nil {
		return NewValidationError("budget amount must be positive")
	}
	if b.Amount.GreaterThan(r.MaxAmount) {
		return NewValidationError(fmt.Sprintf("budget amount cannot exceed %s", r.MaxAmount))
	}
	switch b.Period {
	case PeriodWeek, PeriodMonth, PeriodYear:
	default:
		return NewValidationError("time period must be one of: Week, Month, Year")
	}
	if !b.EndDate.IsZero() && !b.EndDate.After(b.StartDate) {
		return NewValidationError("end date must be after start date")
	}
	if b.UserID <= 0 {
		return NewValidationError("invalid user ID")
	}
	if b.CategoryID <= 0 {
		return NewValidationError("invalid category ID")
	}
	return nil
}
