package storage

import (
	"time"

	"finman/internal/core"
)

func (s *RepositorySuite) TestBudgetSpendingWindow() {
	userID := s.createUser("budget@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	salary := s.categoryByName(userID, "Salary")
	food := s.categoryByName(userID, "Food & Drink")

	s.income(userID, bank.ID, salary.ID, 200_000)

	budgetID, err := s.repo.CreateBudget(s.ctx, core.Budget{
		UserID:     userID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 100_000},
		Period:     core.PeriodMonth,
	})
	s.Require().NoError(err)
	s.Positive(budgetID)

	expense := func(cents int64, at time.Time) {
		_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
			UserID:     userID,
			AccountID:  bank.ID,
			CategoryID: food.ID,
			Amount:     core.Money{Cents: cents},
			Type:       core.TxExpense,
			CreatedAt:  at,
		})
		s.Require().NoError(err)
	}

	expense(30_000, testClock.Add(2*time.Hour))           // inside the window
	expense(46_000, testClock.AddDate(0, 0, 10))          // inside the window
	expense(5_000, testClock.Add(-24*time.Hour))          // before the window
	expense(7_000, testClock.AddDate(0, 1, 5))            // after the window

	row, err := s.repo.ActiveBudgetSpending(s.ctx, userID, food.ID)
	s.Require().NoError(err)
	s.Require().NotNil(row)
	s.Equal(int64(76_000), row.Spent.Cents)
	s.Equal("Food & Drink", row.CategoryName)
	s.Equal(int64(100_000), row.Budget.Amount.Cents)
}

func (s *RepositorySuite) TestActiveBudgetSpendingNoBudget() {
	userID := s.createUser("nobudget@example.com")
	food := s.categoryByName(userID, "Food & Drink")

	row, err := s.repo.ActiveBudgetSpending(s.ctx, userID, food.ID)
	s.Require().NoError(err)
	s.Nil(row)
}

func (s *RepositorySuite) TestBudgetWithoutSpendingReadsZero() {
	userID := s.createUser("zerospend@example.com")
	transport := s.categoryByName(userID, "Transport")

	_, err := s.repo.CreateBudget(s.ctx, core.Budget{
		UserID:     userID,
		CategoryID: transport.ID,
		Amount:     core.Money{Cents: 50_000},
		Period:     core.PeriodWeek,
	})
	s.Require().NoError(err)

	rows, err := s.repo.ActiveBudgetsWithSpending(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(rows[0].Spent.IsZero())
}

func (s *RepositorySuite) TestSweepRemovesOnlyExpiredBudgets() {
	userID := s.createUser("sweep@example.com")
	food := s.categoryByName(userID, "Food & Drink")
	transport := s.categoryByName(userID, "Transport")

	// Expired: its month closed before the frozen clock.
	_, err := s.repo.CreateBudget(s.ctx, core.Budget{
		UserID:     userID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 10_000},
		Period:     core.PeriodMonth,
		StartDate:  testClock.AddDate(0, -2, 0),
	})
	s.Require().NoError(err)

	_, err = s.repo.CreateBudget(s.ctx, core.Budget{
		UserID:     userID,
		CategoryID: transport.ID,
		Amount:     core.Money{Cents: 20_000},
		Period:     core.PeriodMonth,
	})
	s.Require().NoError(err)

	// The expired budget is already invisible to reads.
	rows, err := s.repo.ActiveBudgetsWithSpending(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(transport.ID, rows[0].Budget.CategoryID)

	removed, err := s.repo.SweepExpiredBudgets(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(int64(1), removed)

	removed, err = s.repo.SweepExpiredBudgets(s.ctx, userID)
	s.Require().NoError(err)
	s.Zero(removed)
}

func (s *RepositorySuite) TestDeleteBudget() {
	userID := s.createUser("buddel@example.com")
	food := s.categoryByName(userID, "Food & Drink")

	budgetID, err := s.repo.CreateBudget(s.ctx, core.Budget{
		UserID:     userID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 10_000},
		Period:     core.PeriodWeek,
	})
	s.Require().NoError(err)

	deleted, err := s.repo.DeleteBudget(s.ctx, budgetID, userID)
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.repo.DeleteBudget(s.ctx, budgetID, userID)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *RepositorySuite) TestBalanceSummary() {
	userID := s.createUser("summary@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	fund := s.accountByName(userID, "Saving is a good Habit Fund")
	salary := s.categoryByName(userID, "Salary")
	food := s.categoryByName(userID, "Food & Drink")

	s.income(userID, bank.ID, salary.ID, 50_000)

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  bank.ID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 12_000},
		Type:       core.TxExpense,
	})
	s.Require().NoError(err)

	_, err = s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		AccountID:   bank.ID,
		ToAccountID: fund.ID,
		Amount:      core.Money{Cents: 8_000},
		Type:        core.TxTransfer,
	})
	s.Require().NoError(err)

	summary, err := s.repo.BalanceSummary(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(int64(30_000), summary.TotalBalance.Cents) // 500 - 120 - 80 transferred out
	s.Equal(int64(8_000), summary.TotalSavings.Cents)
	s.Equal(int64(50_000), summary.MonthlyIncome.Cents)
	s.Equal(int64(12_000), summary.MonthlyExpense.Cents)
	s.Equal(int64(38_000), summary.MonthlyCashflow.Cents)
}

func (s *RepositorySuite) TestBalanceSummaryIgnoresPriorMonths() {
	userID := s.createUser("months@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	salary := s.categoryByName(userID, "Salary")

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  bank.ID,
		CategoryID: salary.ID,
		Amount:     core.Money{Cents: 70_000},
		Type:       core.TxIncome,
		CreatedAt:  testClock.AddDate(0, -1, 0),
	})
	s.Require().NoError(err)

	s.income(userID, bank.ID, salary.ID, 20_000)

	summary, err := s.repo.BalanceSummary(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(int64(90_000), summary.TotalBalance.Cents)
	s.Equal(int64(20_000), summary.MonthlyIncome.Cents)
}
