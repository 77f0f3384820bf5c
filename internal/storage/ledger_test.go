package storage

import (
	"time"

	"finman/internal/core"
)

// income deposits money into a seeded account via the ledger writer.
func (s *RepositorySuite) income(userID, accountID, categoryID, cents int64) {
	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     core.Money{Cents: cents},
		Type:       core.TxIncome,
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) balance(accountID int64) int64 {
	account, err := s.repo.GetAccount(s.ctx, accountID)
	s.Require().NoError(err)
	s.Require().NotNil(account)
	return account.Balance.Cents
}

func (s *RepositorySuite) TestIncomeCreditsAccount() {
	userID := s.createUser("income@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	salary := s.categoryByName(userID, "Salary")

	s.income(userID, bank.ID, salary.ID, 50_000)

	s.Equal(int64(50_000), s.balance(bank.ID))
}

func (s *RepositorySuite) TestExpenseDebitsAccount() {
	userID := s.createUser("expense@example.com")
	bank := s.accountByName(userID, "My Bank Account")
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

	s.Equal(int64(38_000), s.balance(bank.ID))
}

func (s *RepositorySuite) TestTransferConservesTotal() {
	userID := s.createUser("transfer@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	cash := s.accountByName(userID, "Cash Wallet")
	salary := s.categoryByName(userID, "Salary")

	s.income(userID, bank.ID, salary.ID, 30_000)

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		AccountID:   bank.ID,
		ToAccountID: cash.ID,
		Amount:      core.Money{Cents: 10_000},
		Type:        core.TxTransfer,
	})
	s.Require().NoError(err)

	s.Equal(int64(20_000), s.balance(bank.ID))
	s.Equal(int64(10_000), s.balance(cash.ID))
}

func (s *RepositorySuite) TestInsufficientFundsLeavesStateUnchanged() {
	userID := s.createUser("funds@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	salary := s.categoryByName(userID, "Salary")
	food := s.categoryByName(userID, "Food & Drink")

	s.income(userID, bank.ID, salary.ID, 5_000)

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  bank.ID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 6_000},
		Type:       core.TxExpense,
	})
	s.Require().Error(err)
	s.True(core.IsInsufficientFunds(err))

	s.Equal(int64(5_000), s.balance(bank.ID))

	views, err := s.repo.ListTransactions(s.ctx, userID, 10)
	s.Require().NoError(err)
	s.Len(views, 1) // only the income row made it to the ledger
}

func (s *RepositorySuite) TestValidationFailureWritesNothing() {
	userID := s.createUser("invalid@example.com")
	bank := s.accountByName(userID, "My Bank Account")

	// Income without a category never reaches the store.
	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:    userID,
		AccountID: bank.ID,
		Amount:    core.Money{Cents: 1_000},
		Type:      core.TxIncome,
	})
	s.Require().Error(err)
	s.True(core.IsValidationError(err))

	views, err := s.repo.ListTransactions(s.ctx, userID, 10)
	s.Require().NoError(err)
	s.Empty(views)
	s.Equal(int64(0), s.balance(bank.ID))
}

func (s *RepositorySuite) TestUnknownCategoryRejected() {
	userID := s.createUser("badcat@example.com")
	bank := s.accountByName(userID, "My Bank Account")

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  bank.ID,
		CategoryID: 9999,
		Amount:     core.Money{Cents: 1_000},
		Type:       core.TxIncome,
	})
	s.Require().Error(err)
	s.True(core.IsValidationError(err))
	s.Contains(err.Error(), "category not found")

	views, err := s.repo.ListTransactions(s.ctx, userID, 10)
	s.Require().NoError(err)
	s.Empty(views)
	s.Equal(int64(0), s.balance(bank.ID))
}

func (s *RepositorySuite) TestCategoryOfAnotherUserRejected() {
	userID := s.createUser("owner@example.com")
	otherID := s.createUser("other@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	otherSalary := s.categoryByName(otherID, "Salary")

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  bank.ID,
		CategoryID: otherSalary.ID,
		Amount:     core.Money{Cents: 1_000},
		Type:       core.TxIncome,
	})
	s.Require().Error(err)
	s.True(core.IsValidationError(err))
}

func (s *RepositorySuite) TestTransferIntoGoalAccountSyncsGoal() {
	userID := s.createUser("goalsync@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	fund := s.accountByName(userID, "Saving is a good Habit Fund")
	salary := s.categoryByName(userID, "Salary")

	s.income(userID, bank.ID, salary.ID, 40_000)

	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		AccountID:   bank.ID,
		ToAccountID: fund.ID,
		Amount:      core.Money{Cents: 15_000},
		Type:        core.TxTransfer,
	})
	s.Require().NoError(err)

	goals, err := s.repo.ListSavingGoals(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(goals, 1)
	s.Equal(int64(15_000), goals[0].Current.Cents)
	s.Equal(s.balance(fund.ID), goals[0].Current.Cents)
}

func (s *RepositorySuite) TestTransferBetweenGoalAccountsSyncsBoth() {
	userID := s.createUser("twogoals@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	salary := s.categoryByName(userID, "Salary")

	_, err := s.repo.CreateSavingGoal(s.ctx, core.SavingGoal{
		UserID: userID,
		Name:   "Vacation",
		Target: core.Money{Cents: 100_000},
	})
	s.Require().NoError(err)

	defaultFund := s.accountByName(userID, "Saving is a good Habit Fund")
	vacationFund := s.accountByName(userID, "Vacation Fund")

	s.income(userID, bank.ID, salary.ID, 50_000)

	_, err = s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		AccountID:   bank.ID,
		ToAccountID: defaultFund.ID,
		Amount:      core.Money{Cents: 20_000},
		Type:        core.TxTransfer,
	})
	s.Require().NoError(err)

	_, err = s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		AccountID:   defaultFund.ID,
		ToAccountID: vacationFund.ID,
		Amount:      core.Money{Cents: 8_000},
		Type:        core.TxTransfer,
	})
	s.Require().NoError(err)

	goals, err := s.repo.ListSavingGoals(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(goals, 2)

	byName := make(map[string]core.SavingGoal, len(goals))
	for _, g := range goals {
		byName[g.Name] = g
	}
	s.Equal(int64(12_000), byName["Saving is a good Habit"].Current.Cents)
	s.Equal(int64(8_000), byName["Vacation"].Current.Cents)
}

func (s *RepositorySuite) TestListTransactionsNewestFirst() {
	userID := s.createUser("feed@example.com")
	bank := s.accountByName(userID, "My Bank Account")
	salary := s.categoryByName(userID, "Salary")
	food := s.categoryByName(userID, "Food & Drink")

	base := testClock.Add(-48 * time.Hour)
	_, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:     userID,
		AccountID:  bank.ID,
		CategoryID: salary.ID,
		Amount:     core.Money{Cents: 30_000},
		Type:       core.TxIncome,
		CreatedAt:  base,
	})
	s.Require().NoError(err)

	_, err = s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		AccountID:   bank.ID,
		CategoryID:  food.ID,
		Amount:      core.Money{Cents: 2_500},
		Description: "lunch",
		Type:        core.TxExpense,
		CreatedAt:   base.Add(24 * time.Hour),
	})
	s.Require().NoError(err)

	views, err := s.repo.ListTransactions(s.ctx, userID, 10)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(core.TxExpense, views[0].Type)
	s.Equal("lunch", views[0].Description)
	s.Equal("Food & Drink", views[0].CategoryName)
	s.Equal("My Bank Account", views[0].AccountName)
	s.Equal(core.TxIncome, views[1].Type)

	views, err = s.repo.ListTransactions(s.ctx, userID, 1)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal(core.TxExpense, views[0].Type)
}
