// Package auth registers participant accounts and issues the JWTs that carry
// caller identity. The engine itself never sees credentials, only the address
// extracted from a validated token.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"custodia/internal/models"
	"custodia/internal/repositories"
	"custodia/internal/repositories/cache"
	"custodia/internal/utils"
	"custodia/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain special characters")
	ErrEmailTaken         = errors.New("email already taken")
)

type Service interface {
	Register(email, password, name string) (*models.Account, error)
	Login(email, password string) (*models.Account, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(accountID uint) error
	GetAccountByID(accountID uint) (*models.Account, error)
	GetAccountByAddress(address string) (*models.Account, error)
	GetAccountTokenVersion(accountID uint) (int, error)
}

type service struct {
	accountRepo repositories.AccountRepository
	cache       *cache.CacheService
}

// NewService wires the account repository and an optional cache. The cache
// backs the per-request token-version check in the auth middleware.
func NewService(accountRepo repositories.AccountRepository, cacheService *cache.CacheService) Service {
	return &service{
		accountRepo: accountRepo,
		cache:       cacheService,
	}
}

// Register creates an account and derives its participant address. Addresses
// are opaque identifiers; they only need to be unique and non-empty.
func (s *service) Register(email, password, name string) (*models.Account, error) {
	if !validation.ValidPassword(password) {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashed),
		Name:     name,
		Address:  "acct:" + uuid.NewString(),
	}
	if err := s.accountRepo.Create(account); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return account, nil
}

func (s *service) Login(email, password string) (*models.Account, string, string, error) {
	account, err := s.accountRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.AccountClaims{
		AccountID:    account.ID,
		Email:        account.Email,
		Address:      account.Address,
		TokenVersion: account.TokenVersion,
	})
	if err != nil {
		return nil, "", "", err
	}

	return account, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	account, err := s.accountRepo.GetByID(claims.AccountID)
	if err != nil {
		return "", "", errors.New("account not found")
	}

	if account.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.AccountClaims{
		AccountID:    account.ID,
		Email:        account.Email,
		Address:      account.Address,
		TokenVersion: account.TokenVersion,
	})
}

func (s *service) Logout(accountID uint) error {
	if err := s.accountRepo.IncrementTokenVersion(accountID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateAccount(context.Background(), accountID)
	}
	return nil
}

func (s *service) GetAccountByID(accountID uint) (*models.Account, error) {
	return s.accountRepo.GetByID(accountID)
}

func (s *service) GetAccountByAddress(address string) (*models.Account, error) {
	return s.accountRepo.GetByAddress(address)
}

func (s *service) GetAccountTokenVersion(accountID uint) (int, error) {
	if s.cache != nil {
		if account, err := s.cache.GetAccount(context.Background(), accountID); err == nil {
			return account.TokenVersion, nil
		}
	}

	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetAccount(context.Background(), account)
	}
	return account.TokenVersion, nil
}
