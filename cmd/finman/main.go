package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"finman/internal/auth"
	"finman/internal/config"
	"finman/internal/log"
	"finman/internal/services"
	"finman/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env next to the binary; absence is fine.
	_ = godotenv.Load()

	email := flag.String("email", "", "Print the balance dashboard for this user")
	password := flag.String("password", "", "Password for -email")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel, "finman")
	log.SetDefault(logger)

	repo, err := storage.Open(cfg.SQLiteDBPath, storage.Options{
		Rules:              cfg.Rules(),
		MaxAccountsPerUser: cfg.MaxAccountsPerUser,
		Seed:               storage.DefaultSeed(),
	})
	if err != nil {
		logger.Error("failed to open store", "path", cfg.SQLiteDBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger.Info("store ready", "path", cfg.SQLiteDBPath)

	if *email == "" {
		return
	}

	ctx := context.Background()
	users := services.NewUserService(repo, auth.NewPBKDF2Hasher(), cfg.Rules())
	budgets := services.NewBudgetService(repo, cfg.WarningThreshold, cfg.ApproachThreshold, nil)

	user, err := users.Authenticate(ctx, *email, *password)
	if err != nil {
		logger.Error("authentication failed", "error", err)
		os.Exit(1)
	}
	if user == nil {
		fmt.Fprintln(os.Stderr, "Error: invalid email or password")
		os.Exit(1)
	}

	if _, err := budgets.SweepExpired(ctx, user.ID); err != nil {
		logger.Warn("budget sweep failed", "error", err)
	}

	summary, err := repo.BalanceSummary(ctx, user.ID)
	if err != nil {
		logger.Error("balance summary failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Welcome back, %s\n\n", user.Name)
	fmt.Printf("Total balance:    %s\n", summary.TotalBalance)
	fmt.Printf("Total savings:    %s\n", summary.TotalSavings)
	fmt.Printf("Monthly income:   %s\n", summary.MonthlyIncome)
	fmt.Printf("Monthly expense:  %s\n", summary.MonthlyExpense)
	fmt.Printf("Monthly cashflow: %s\n", summary.MonthlyCashflow)

	views, err := budgets.ListBudgetsWithSpending(ctx, user.ID)
	if err != nil {
		logger.Error("budget listing failed", "error", err)
		os.Exit(1)
	}
	if len(views) > 0 {
		fmt.Println("\nActive budgets:")
		for _, v := range views {
			marker := " "
			if v.OverThreshold {
				marker = "!"
			}
			fmt.Printf("%s %-20s %s / %s (%.0f%%, %d days left)\n",
				marker, v.CategoryName, v.Spent, v.Amount, v.SpentPct*100, v.DaysRemaining)
		}
	}
}
