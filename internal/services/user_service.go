// Package services orchestrates the storage layer into the operations
// the surrounding application consumes: registration, authentication
// and budget evaluation.
package services

import (
	"context"
	"log/slog"

	"finman/internal/auth"
	"finman/internal/core"
	"finman/internal/storage"

	"github.com/badoux/checkmail"
)

// UserService handles registration and login. The hasher is injected
// so tests can use a cheap fake.
type UserService struct {
	repo   *storage.Repository
	hasher auth.Hasher
	rules  core.Rules
}

func NewUserService(repo *storage.Repository, hasher auth.Hasher, rules core.Rules) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		rules:  rules,
	}
}

// Register validates, hashes the password with a fresh salt and
// creates the user (with its default accounts, categories and saving
// goal) in one physical transaction.
func (s *UserService) Register(ctx context.Context, name, email, password string) (int64, error) {
	u := core.User{Name: name, Email: email, Password: password}
	if err := u.Validate(s.rules); err != nil {
		return 0, err
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return 0, core.NewValidationError("invalid email format")
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return 0, core.NewStoreError("generate salt", err)
	}
	hash := s.hasher.Hash(password, salt)

	userID, err := s.repo.CreateUser(ctx, u, hash, salt)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", userID)
	return userID, nil
}

// Authenticate returns the user for a matching email/password pair,
// nil when the email is unknown or the password does not verify.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*core.User, error) {
	rec, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if !s.hasher.Verify(password, rec.Salt, rec.PasswordHash) {
		slog.DebugContext(ctx, "authentication rejected", "email", email)
		return nil, nil
	}
	user := rec.User
	return &user, nil
}
