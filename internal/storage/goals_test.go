package storage

import "finman/internal/core"

func (s *RepositorySuite) TestCreateSavingGoalCreatesFundAccount() {
	userID := s.createUser("goal@example.com")

	goalID, err := s.repo.CreateSavingGoal(s.ctx, core.SavingGoal{
		UserID:  userID,
		Name:    "New Laptop",
		Target:  core.Money{Cents: 150_000},
		Current: core.Money{Cents: 25_000},
	})
	s.Require().NoError(err)
	s.Positive(goalID)

	fund := s.accountByName(userID, "New Laptop Fund")
	s.Equal(core.AccountSavings, fund.Type)
	s.Equal(int64(25_000), fund.Balance.Cents)
}

func (s *RepositorySuite) TestListSavingGoalsDefaultFirst() {
	userID := s.createUser("goallist@example.com")

	_, err := s.repo.CreateSavingGoal(s.ctx, core.SavingGoal{
		UserID: userID,
		Name:   "Vacation",
		Target: core.Money{Cents: 80_000},
	})
	s.Require().NoError(err)

	goals, err := s.repo.ListSavingGoals(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(goals, 2)
	s.True(goals[0].IsDefault)
	s.Equal("Saving is a good Habit", goals[0].Name)
	s.Equal("Vacation", goals[1].Name)
}

func (s *RepositorySuite) TestUpdateSavingGoalAmount() {
	userID := s.createUser("goalupd@example.com")
	goals, err := s.repo.ListSavingGoals(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(goals, 1)

	updated, err := s.repo.UpdateSavingGoalAmount(s.ctx, goals[0].ID, core.Money{Cents: 9_900})
	s.Require().NoError(err)
	s.True(updated)

	goals, err = s.repo.ListSavingGoals(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(int64(9_900), goals[0].Current.Cents)

	_, err = s.repo.UpdateSavingGoalAmount(s.ctx, goals[0].ID, core.Money{Cents: -1})
	s.Require().Error(err)
	s.True(core.IsValidationError(err))

	updated, err = s.repo.UpdateSavingGoalAmount(s.ctx, 9999, core.Money{Cents: 100})
	s.Require().NoError(err)
	s.False(updated)
}

func (s *RepositorySuite) TestDeleteSavingGoalRemovesFundAccount() {
	userID := s.createUser("goaldel@example.com")

	goalID, err := s.repo.CreateSavingGoal(s.ctx, core.SavingGoal{
		UserID: userID,
		Name:   "Short Lived",
		Target: core.Money{Cents: 10_000},
	})
	s.Require().NoError(err)
	fund := s.accountByName(userID, "Short Lived Fund")

	deleted, err := s.repo.DeleteSavingGoal(s.ctx, goalID, userID)
	s.Require().NoError(err)
	s.True(deleted)

	account, err := s.repo.GetAccount(s.ctx, fund.ID)
	s.Require().NoError(err)
	s.Nil(account)

	// Unknown goal and wrong owner are both reported as absent.
	deleted, err = s.repo.DeleteSavingGoal(s.ctx, goalID, userID)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *RepositorySuite) TestSavingAndRegularAccountSplit() {
	userID := s.createUser("split@example.com")

	saving, err := s.repo.ListSavingAccounts(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(saving, 1)
	s.Equal("Saving is a good Habit Fund", saving[0].Name)

	regular, err := s.repo.ListRegularAccounts(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(regular, 2)
	for _, a := range regular {
		s.NotEqual(core.AccountSavings, a.Type)
	}
}
