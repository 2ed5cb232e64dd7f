package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techlearn/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountExists      = errors.New("email is already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountRepository stores registered accounts. Emails passed in are normalized.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	TouchLogin(ctx context.Context, email string, at time.Time) error
}

// Accounts registers and authenticates users.
type Accounts struct {
	repo AccountRepository
	cost int
	now  func() time.Time
}

func NewAccounts(repo AccountRepository, cost int) *Accounts {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Accounts{repo: repo, cost: cost, now: time.Now}
}

func (a *Accounts) Register(ctx context.Context, email, password string) (models.User, error) {
	email = models.NormalizeEmail(email)

	_, err := a.repo.FindByEmail(ctx, email)
	if err == nil {
		return models.User{}, ErrAccountExists
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{Email: email, Password: string(hash)}
	if err := a.repo.Create(ctx, account); err != nil {
		return models.User{}, err
	}
	return account.User(), nil
}

func (a *Accounts) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = models.NormalizeEmail(email)

	account, err := a.repo.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := a.repo.TouchLogin(ctx, email, a.now()); err != nil {
		return models.User{}, err
	}
	return account.User(), nil
}

// Profile returns the stored account of email.
func (a *Accounts) Profile(ctx context.Context, email string) (*models.Account, error) {
	return a.repo.FindByEmail(ctx, models.NormalizeEmail(email))
}
