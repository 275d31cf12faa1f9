// Package main seeds the initial state: the owner and oracle accounts, the
// settings singleton and optionally a first supported token with a minted
// balance for smoke testing. Safe to run repeatedly.
package main

import (
	"errors"
	"fmt"
	"log"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"custodia/internal/config"
	"custodia/internal/models"
	"custodia/internal/repositories"
	"custodia/internal/services/custody"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	accountRepo := repositories.NewAccountRepository(repositories.DB)
	registryRepo := repositories.NewRegistryRepository(repositories.DB)
	escrowRepo := repositories.NewEscrowRepository(repositories.DB)

	admin := ensureAccount(accountRepo,
		config.GetEnv("ADMIN_EMAIL", "admin@custodia.local"),
		config.GetEnv("ADMIN_PASSWORD", "ChangeMe!123"),
		"Administrator")
	oracle := ensureAccount(accountRepo,
		config.GetEnv("ORACLE_EMAIL", "oracle@custodia.local"),
		config.GetEnv("ORACLE_PASSWORD", "ChangeMe!123"),
		"Risk Oracle")

	if _, err := registryRepo.LoadSettings(); err != nil {
		if !errors.Is(err, repositories.ErrSettingsNotFound) {
			log.Fatalf("failed to load settings: %v", err)
		}

		gasDeposit, err := seedAmount(config.GetEnv("SEED_GAS_DEPOSIT", "0"))
		if err != nil {
			log.Fatalf("invalid SEED_GAS_DEPOSIT: %v", err)
		}

		settings := &models.Settings{
			Owner:                admin.Address,
			Oracle:               oracle.Address,
			GasDeposit:           models.NewAmount(gasDeposit),
			FeeRecipient:         config.GetEnv("SEED_FEE_RECIPIENT", admin.Address),
			GasPaymentsRecipient: config.GetEnv("SEED_GAS_RECIPIENT", oracle.Address),
			FeeBP:                uint(config.GetIntEnv("SEED_FEE_BP", 10)),
			RiskThreshold:        uint(config.GetIntEnv("SEED_RISK_THRESHOLD", models.DefaultRiskThreshold)),
		}
		if err := registryRepo.SaveSettings(settings); err != nil {
			log.Fatalf("failed to seed settings: %v", err)
		}
		log.Printf("settings seeded: owner=%s oracle=%s", admin.Address, oracle.Address)
	} else {
		log.Println("settings already present, leaving untouched")
	}

	if token := config.GetEnv("SEED_TOKEN", ""); token != "" {
		assets, err := registryRepo.ListAssets()
		if err != nil {
			log.Fatalf("failed to list assets: %v", err)
		}
		if !contains(assets, token) {
			if err := registryRepo.AddAsset(token); err != nil {
				log.Fatalf("failed to seed token: %v", err)
			}
			log.Printf("token %s marked supported", token)
		}

		if mint := config.GetEnv("SEED_MINT", ""); mint != "" {
			amount, err := seedAmount(mint)
			if err != nil {
				log.Fatalf("invalid SEED_MINT: %v", err)
			}
			ledger := custody.NewLedger(escrowRepo)
			if err := ledger.Mint(token, admin.Address, amount); err != nil {
				log.Fatalf("failed to mint seed balance: %v", err)
			}
			log.Printf("minted %s %s to %s", mint, token, admin.Address)
		}
	}
}

// seedAmount parses a configured amount. Negative values would make the
// required gas payment unmatchable, so they are rejected here rather than at
// first initiate.
func seedAmount(raw string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok || amount.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("amount %q must be a non-negative integer", raw)
	}
	return amount, nil
}

func ensureAccount(repo repositories.AccountRepository, email, password, name string) *models.Account {
	account, err := repo.GetByEmail(email)
	if err == nil {
		return account
	}
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		log.Fatalf("failed to look up %s: %v", email, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	account = &models.Account{
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Address:  "acct:" + uuid.NewString(),
	}
	if err := repo.Create(account); err != nil {
		log.Fatalf("failed to create %s: %v", email, err)
	}
	log.Printf("account created: %s (%s)", email, account.Address)
	return account
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
