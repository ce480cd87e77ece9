package service

import (
	"errors"
	"fmt"
	"strings"

	"fintrack/database"
	"fintrack/models"

	"gorm.io/gorm"
)

// SettingsService singleton profile and credential row
type SettingsService struct {
	store *database.Store
}

// NewSettingsService creates the settings service
func NewSettingsService(store *database.Store) *SettingsService {
	return &SettingsService{store: store}
}

// SetupRequest first-run wizard payload
type SetupRequest struct {
	Name         string  `json:"name" binding:"required" example:"Alex"`
	Currency     string  `json:"currency" example:"EUR"`
	Password     string  `json:"password" binding:"required" example:"secret123"`
	ProfileImage *string `json:"profileImage" example:"profile_1717171717171"`
}

// Get returns the settings row.
func (s *SettingsService) Get() (*models.Settings, error) {
	var settings models.Settings
	err := s.store.Read(func(db *gorm.DB) error {
		return db.First(&settings, models.SettingsID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &settings, nil
}

// IsFirstRun reports whether setup has not been completed yet.
func (s *SettingsService) IsFirstRun() (bool, error) {
	settings, err := s.Get()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return !settings.SetupCompleted, nil
}

// Profile returns name, image and currency with defaults applied.
func (s *SettingsService) Profile() (models.Profile, error) {
	settings, err := s.Get()
	if err != nil {
		return models.Profile{}, err
	}
	return settings.Profile(), nil
}

// CompleteSetup stores the profile and the hashed master password and marks setup done.
// Running it again overwrites everything.
func (s *SettingsService) CompleteSetup(req SetupRequest) error {
	if strings.TrimSpace(req.Password) == "" {
		return models.Invalid("password", "is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return models.Invalid("name", "is required")
	}
	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	return s.store.Mutate(func(db *gorm.DB) error {
		return db.Model(&models.Settings{}).Where("id = ?", models.SettingsID).Updates(map[string]interface{}{
			"name":               req.Name,
			"currency":           currency,
			"masterPasswordHash": hash,
			"profileImage":       req.ProfileImage,
			"setupCompleted":     1,
			"updatedAt":          s.store.Timestamp(),
		}).Error
	})
}

// Update merges name, currency and profileImage from patch. Other keys, the password
// hash included, are ignored. A null profileImage removes the image.
func (s *SettingsService) Update(patch map[string]interface{}) error {
	updates := map[string]interface{}{}
	for _, field := range []string{"name", "currency"} {
		raw, ok := patch[field]
		if !ok {
			continue
		}
		v, isString := raw.(string)
		if !isString || strings.TrimSpace(v) == "" {
			return models.Invalid(field, "must be a non-empty string")
		}
		updates[field] = v
	}
	if raw, ok := patch["profileImage"]; ok {
		switch v := raw.(type) {
		case nil:
			updates["profileImage"] = nil
		case string:
			if v == "" {
				updates["profileImage"] = nil
			} else {
				updates["profileImage"] = v
			}
		default:
			return models.Invalid("profileImage", "must be a string or null")
		}
	}
	updates["updatedAt"] = s.store.Timestamp()

	return s.store.Mutate(func(db *gorm.DB) error {
		return db.Model(&models.Settings{}).Where("id = ?", models.SettingsID).Updates(updates).Error
	})
}

// VerifyPassword checks password against the stored hash. ErrNoCredential means no
// password has been configured, which is not the same as a wrong password.
func (s *SettingsService) VerifyPassword(password string) (bool, error) {
	settings, err := s.Get()
	if err != nil {
		return false, err
	}
	if !settings.HasPassword() {
		return false, ErrNoCredential
	}
	return CheckPassword(password, *settings.MasterPasswordHash), nil
}
