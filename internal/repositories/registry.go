package repositories

import "custodia/internal/models"

// RegistryRepository persists the settings singleton, the two whitelists and
// the supported-token set. The registry service keeps the working copies in
// memory and writes through this interface.
type RegistryRepository interface {
	LoadSettings() (*models.Settings, error)
	SaveSettings(settings *models.Settings) error

	ListMembers(kind string) ([]string, error)
	AddMember(kind, address string) error
	RemoveMember(kind, address string) error

	ListAssets() ([]string, error)
	AddAsset(asset string) error
	RemoveAsset(asset string) error

	// ExecuteInTransaction runs fc against a transaction-bound repository so
	// batch mutations commit or roll back as a unit.
	ExecuteInTransaction(fc func(RegistryRepository) error) error
}
