package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/willemschots/accounts/internal/email"
	"github.com/willemschots/accounts/internal/errorz"
	"github.com/willemschots/accounts/internal/krypto"
	"github.com/willemschots/accounts/internal/metrics"
)

// Service implements registration and management of accounts.
type Service struct {
	store   Store
	hasher  Hasher
	metrics *metrics.Metrics
	logger  *slog.Logger

	// NowFunc is used to determine the current date for validation.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewService creates a new account service.
func NewService(s Store, h Hasher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   s,
		hasher:  h,
		metrics: m,
		logger:  logger,
		NowFunc: time.Now,
	}
}

// Register validates sub and creates a new active account for it.
//
// It fails with an errorz.InvalidInput if sub is invalid and with an
// errorz.Duplicate if the email or username is in use, the email is
// checked first.
func (s *Service) Register(ctx context.Context, sub Submission) (View, error) {
	defer s.metrics.ObserveOperation("register", time.Now())

	p, err := sub.Profile(s.today(), true)
	if err != nil {
		return View{}, err
	}

	var a Account
	err = s.inTx(ctx, func(tx Tx) error {
		txErr := checkUnique(tx, 0, p.Email, p.Username)
		if txErr != nil {
			return txErr
		}

		hash, txErr := sub.Password.Hash(s.hasher)
		if txErr != nil {
			return txErr
		}

		a = newAccount(p, hash)
		return tx.CreateAccount(&a)
	})
	if err != nil {
		return View{}, err
	}

	s.metrics.IncrementRegistered()
	s.logger.Info("account registered", "id", a.ID)

	return ViewOf(a), nil
}

// Update replaces the profile of the account with the given id by sub.
//
// The password is only changed when sub contains one. Update never
// changes whether the account is active.
func (s *Service) Update(ctx context.Context, id int, sub Submission) (View, error) {
	defer s.metrics.ObserveOperation("update", time.Now())

	var a Account
	err := s.inTx(ctx, func(tx Tx) error {
		existing, txErr := findByID(tx, id)
		if txErr != nil {
			return txErr
		}

		wantsPassword := sub.WantsPasswordChange()
		p, txErr := sub.Profile(s.today(), wantsPassword)
		if txErr != nil {
			return txErr
		}

		txErr = checkUnique(tx, id, p.Email, p.Username)
		if txErr != nil {
			return txErr
		}

		var newHash *krypto.Argon2Hash
		if wantsPassword {
			hash, hErr := sub.Password.Hash(s.hasher)
			if hErr != nil {
				return hErr
			}
			newHash = &hash
		}

		a = merge(existing, p, newHash)
		return tx.UpdateAccount(&a)
	})
	if err != nil {
		return View{}, err
	}

	s.metrics.IncrementUpdated()
	s.logger.Info("account updated", "id", a.ID)

	return ViewOf(a), nil
}

// Deactivate marks the account with the given id as inactive.
// Deactivating an inactive account succeeds.
func (s *Service) Deactivate(ctx context.Context, id int) error {
	defer s.metrics.ObserveOperation("deactivate", time.Now())

	err := s.inTx(ctx, func(tx Tx) error {
		a, txErr := findByID(tx, id)
		if txErr != nil {
			return txErr
		}

		a.IsActive = false
		return tx.UpdateAccount(&a)
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementDeactivated()
	s.logger.Info("account deactivated", "id", id)

	return nil
}

// Delete permanently removes the account with the given id.
func (s *Service) Delete(ctx context.Context, id int) error {
	defer s.metrics.ObserveOperation("delete", time.Now())

	err := s.inTx(ctx, func(tx Tx) error {
		txErr := tx.DeleteAccount(id)
		if errors.Is(txErr, errorz.ErrNotFound) {
			return notFound(id)
		}
		return txErr
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementDeleted()
	s.logger.Info("account deleted", "id", id)

	return nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int) (View, error) {
	accounts, err := s.store.FindAccounts(ctx, &Filter{IDs: []int{id}})
	if err != nil {
		return View{}, err
	}

	if len(accounts) != 1 {
		return View{}, notFound(id)
	}

	return ViewOf(accounts[0]), nil
}

// GetByEmail returns the account registered with the given email address.
func (s *Service) GetByEmail(ctx context.Context, rawEmail string) (View, error) {
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		// an invalid address can't belong to an account.
		return View{}, fmt.Errorf("account with email %q: %w", rawEmail, errorz.ErrNotFound)
	}

	accounts, err := s.store.FindAccounts(ctx, &Filter{Emails: []email.Address{addr}})
	if err != nil {
		return View{}, err
	}

	if len(accounts) != 1 {
		return View{}, fmt.Errorf("account with email %q: %w", addr, errorz.ErrNotFound)
	}

	return ViewOf(accounts[0]), nil
}

// GetByUsername returns the account with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (View, error) {
	username = strings.TrimSpace(username)

	accounts, err := s.store.FindAccounts(ctx, &Filter{Usernames: []string{username}})
	if err != nil {
		return View{}, err
	}

	if len(accounts) != 1 {
		return View{}, fmt.Errorf("account with username %q: %w", username, errorz.ErrNotFound)
	}

	return ViewOf(accounts[0]), nil
}

// List returns all accounts ordered by ID.
func (s *Service) List(ctx context.Context) ([]View, error) {
	return s.find(ctx, &Filter{})
}

// ListActive returns all active accounts ordered by ID.
func (s *Service) ListActive(ctx context.Context) ([]View, error) {
	return s.find(ctx, &Filter{IsActive: ptr(true)})
}

// Search returns the accounts whose first or last name contains term,
// ignoring case. A blank term matches every account.
func (s *Service) Search(ctx context.Context, term string) ([]View, error) {
	return s.find(ctx, &Filter{NameContains: strings.TrimSpace(term)})
}

// EmailExists reports whether an account uses the given email address.
func (s *Service) EmailExists(ctx context.Context, rawEmail string) (bool, error) {
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		return false, nil
	}

	accounts, err := s.store.FindAccounts(ctx, &Filter{Emails: []email.Address{addr}})
	if err != nil {
		return false, err
	}

	return len(accounts) > 0, nil
}

// UsernameExists reports whether an account uses the given username.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	accounts, err := s.store.FindAccounts(ctx, &Filter{Usernames: []string{strings.TrimSpace(username)}})
	if err != nil {
		return false, err
	}

	return len(accounts) > 0, nil
}

func (s *Service) find(ctx context.Context, f *Filter) ([]View, error) {
	accounts, err := s.store.FindAccounts(ctx, f)
	if err != nil {
		return nil, err
	}

	return ViewsOf(accounts), nil
}

func (s *Service) today() Date {
	return DateOf(s.NowFunc())
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	return tx.Commit()
}

// checkUnique fails with errorz.Duplicate when the email or username is used
// by an account other than selfID. The store constraints remain the final
// authority, this check only gives an early and precise error.
func checkUnique(tx Tx, selfID int, addr email.Address, username string) error {
	byEmail, err := tx.FindAccounts(&Filter{Emails: []email.Address{addr}})
	if err != nil {
		return err
	}

	if hasOther(byEmail, selfID) {
		return errorz.Duplicate{Key: "email", Value: string(addr)}
	}

	byUsername, err := tx.FindAccounts(&Filter{Usernames: []string{username}})
	if err != nil {
		return err
	}

	if hasOther(byUsername, selfID) {
		return errorz.Duplicate{Key: "username", Value: username}
	}

	return nil
}

func hasOther(accounts []Account, selfID int) bool {
	for _, a := range accounts {
		if a.ID != selfID {
			return true
		}
	}
	return false
}

func findByID(tx Tx, id int) (Account, error) {
	accounts, err := tx.FindAccounts(&Filter{IDs: []int{id}})
	if err != nil {
		return Account{}, err
	}

	if len(accounts) != 1 {
		return Account{}, notFound(id)
	}

	return accounts[0], nil
}

func notFound(id int) error {
	return fmt.Errorf("account %d: %w", id, errorz.ErrNotFound)
}

func ptr[T any](v T) *T {
	return &v
}
