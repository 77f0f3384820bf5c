package services

import (
	"context"
	"sort"
	"time"

	"finman/internal/core"
	"finman/internal/storage"
)

// BudgetService derives spending views from stored budgets and the
// ledger. Thresholds are fractions of the budget amount and arrive at
// construction.
type BudgetService struct {
	repo              *storage.Repository
	warningThreshold  float64 // flags a budget view as over threshold
	approachThreshold float64 // pre-commit advisory projection
	now               func() time.Time
}

func NewBudgetService(repo *storage.Repository, warningThreshold, approachThreshold float64, now func() time.Time) *BudgetService {
	if now == nil {
		now = time.Now
	}
	return &BudgetService{
		repo:              repo,
		warningThreshold:  warningThreshold,
		approachThreshold: approachThreshold,
		now:               now,
	}
}

// ListBudgetsWithSpending returns every active budget of the user with
// its derived figures. Budgets over the warning threshold sort first
// by descending spent percentage; the rest follow by ascending expiry.
func (s *BudgetService) ListBudgetsWithSpending(ctx context.Context, userID int64) ([]core.BudgetView, error) {
	rows, err := s.repo.ActiveBudgetsWithSpending(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]core.BudgetView, len(rows))
	for i, row := range rows {
		views[i] = s.buildView(row, now)
	}

	sort.SliceStable(views, func(i, j int) bool {
		vi, vj := views[i], views[j]
		if vi.OverThreshold != vj.OverThreshold {
			return vi.OverThreshold
		}
		if vi.OverThreshold {
			return vi.SpentPct > vj.SpentPct
		}
		return vi.EndDate.Before(vj.EndDate)
	})

	return views, nil
}

func (s *BudgetService) buildView(row storage.BudgetSpending, now time.Time) core.BudgetView {
	b := row.Budget

	var pct float64
	if b.Amount.Cents > 0 {
		pct = float64(row.Spent.Cents) / float64(b.Amount.Cents)
	}

	remaining := b.Amount.Sub(row.Spent)
	if remaining.IsNegative() {
		remaining = core.Money{}
	}

	days := int(b.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}

	return core.BudgetView{
		BudgetID:      b.ID,
		UserID:        b.UserID,
		CategoryID:    b.CategoryID,
		CategoryName:  row.CategoryName,
		Amount:        b.Amount,
		Spent:         row.Spent,
		Remaining:     remaining,
		SpentPct:      pct,
		Period:        b.Period,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		OverThreshold: pct >= s.warningThreshold,
		DaysRemaining: days,
	}
}

// CheckWarning projects a prospective expense onto the category's
// active budget and returns the projected totals when they reach the
// approach threshold. Advisory only: it never blocks the ledger.
func (s *BudgetService) CheckWarning(ctx context.Context, userID, categoryID int64, amount core.Money) (*core.BudgetWarning, error) {
	row, err := s.repo.ActiveBudgetSpending(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	newTotal := row.Spent.Add(amount)
	var pct float64
	if row.Budget.Amount.Cents > 0 {
		pct = float64(newTotal.Cents) / float64(row.Budget.Amount.Cents)
	}
	if pct < s.approachThreshold {
		return nil, nil
	}

	return &core.BudgetWarning{
		CategoryName: row.CategoryName,
		BudgetAmount: row.Budget.Amount,
		CurrentSpent: row.Spent,
		NewTotal:     newTotal,
		PctUsed:      pct,
		Remaining:    row.Budget.Amount.Sub(newTotal),
	}, nil
}

// CheckExceeded signals when the prospective new total would strictly
// exceed the budget amount. Advisory only.
func (s *BudgetService) CheckExceeded(ctx context.Context, userID, categoryID int64, amount core.Money) (*core.BudgetExceeded, error) {
	row, err := s.repo.ActiveBudgetSpending(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	newTotal := row.Spent.Add(amount)
	if !newTotal.GreaterThan(row.Budget.Amount) {
		return nil, nil
	}

	return &core.BudgetExceeded{
		CategoryName: row.CategoryName,
		BudgetAmount: row.Budget.Amount,
		CurrentSpent: row.Spent,
		NewTotal:     newTotal,
		ExceededBy:   newTotal.Sub(row.Budget.Amount),
	}, nil
}

// SweepExpired deletes the user's expired budgets and reports how many
// were removed.
func (s *BudgetService) SweepExpired(ctx context.Context, userID int64) (int64, error) {
	return s.repo.SweepExpiredBudgets(ctx, userID)
}
