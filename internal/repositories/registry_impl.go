package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"custodia/internal/models"
)

type registryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) RegistryRepository {
	return &registryRepository{db: db}
}

func (r *registryRepository) LoadSettings() (*models.Settings, error) {
	var settings models.Settings
	err := r.db.First(&settings, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

func (r *registryRepository) SaveSettings(settings *models.Settings) error {
	settings.ID = 1
	if err := r.db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *registryRepository) ListMembers(kind string) ([]string, error) {
	var entries []models.WhitelistEntry
	if err := r.db.Where("kind = ?", kind).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s whitelist: %w", kind, err)
	}
	members := make([]string, len(entries))
	for i, e := range entries {
		members[i] = e.Address
	}
	return members, nil
}

func (r *registryRepository) AddMember(kind, address string) error {
	entry := models.WhitelistEntry{Kind: kind, Address: address}
	if err := r.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to add %s to %s whitelist: %w", address, kind, err)
	}
	return nil
}

func (r *registryRepository) RemoveMember(kind, address string) error {
	err := r.db.Where("kind = ? AND address = ?", kind, address).
		Delete(&models.WhitelistEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove %s from %s whitelist: %w", address, kind, err)
	}
	return nil
}

func (r *registryRepository) ListAssets() ([]string, error) {
	var rows []models.SupportedAsset
	if err := r.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list supported assets: %w", err)
	}
	assets := make([]string, len(rows))
	for i, row := range rows {
		assets[i] = row.Asset
	}
	return assets, nil
}

func (r *registryRepository) AddAsset(asset string) error {
	row := models.SupportedAsset{Asset: asset}
	if err := r.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to add supported asset %s: %w", asset, err)
	}
	return nil
}

func (r *registryRepository) RemoveAsset(asset string) error {
	if err := r.db.Where("asset = ?", asset).Delete(&models.SupportedAsset{}).Error; err != nil {
		return fmt.Errorf("failed to remove supported asset %s: %w", asset, err)
	}
	return nil
}

func (r *registryRepository) ExecuteInTransaction(fc func(RegistryRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fc(&registryRepository{db: tx})
	})
}
