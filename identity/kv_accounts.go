package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"techlearn/database"
	"techlearn/models"
)

const usersKey = "techlearn_users"

// KVAccounts keeps every account in a single record, for the KV-only storage drivers.
type KVAccounts struct {
	mu sync.Mutex
	kv database.KVStore
}

func NewKVAccounts(kv database.KVStore) *KVAccounts {
	return &KVAccounts{kv: kv}
}

func (r *KVAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Email == email {
			return &accounts[i], nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *KVAccounts) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.read(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Email == account.Email {
			return ErrAccountExists
		}
	}
	account.ID = uint(len(accounts) + 1)
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	return r.write(ctx, append(accounts, *account))
}

func (r *KVAccounts) TouchLogin(ctx context.Context, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.read(ctx)
	if err != nil {
		return err
	}
	for i := range accounts {
		if accounts[i].Email == email {
			t := at
			accounts[i].LastLogin = &t
			accounts[i].UpdatedAt = at
			return r.write(ctx, accounts)
		}
	}
	return ErrAccountNotFound
}

type storedAccount struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (r *KVAccounts) read(ctx context.Context) ([]models.Account, error) {
	raw, ok, err := r.kv.Get(ctx, usersKey)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var stored []storedAccount
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	accounts := make([]models.Account, 0, len(stored))
	for _, s := range stored {
		a := models.Account{Email: s.Email, Password: s.Password, LastLogin: s.LastLogin}
		a.ID = s.ID
		a.CreatedAt = s.CreatedAt
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (r *KVAccounts) write(ctx context.Context, accounts []models.Account) error {
	stored := make([]storedAccount, 0, len(accounts))
	for _, a := range accounts {
		stored = append(stored, storedAccount{
			ID:        a.ID,
			Email:     a.Email,
			Password:  a.Password,
			LastLogin: a.LastLogin,
			CreatedAt: a.CreatedAt,
		})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := r.kv.Put(ctx, usersKey, raw); err != nil {
		return fmt.Errorf("persist accounts: %w", err)
	}
	return nil
}
