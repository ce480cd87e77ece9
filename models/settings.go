package models

// SettingsID identity of the singleton settings row
const SettingsID = 1

// Defaults applied when the profile is read before setup
const (
	DefaultName     = "User"
	DefaultCurrency = "EUR"
)

// Settings profile, currency and credential of the single user
type Settings struct {
	ID                 int64   `json:"id" gorm:"column:id;primaryKey"`
	Name               string  `json:"name" gorm:"column:name"`
	ProfileImage       *string `json:"profileImage" gorm:"column:profileImage"`
	Currency           *string `json:"currency" gorm:"column:currency"`
	MasterPasswordHash *string `json:"-" gorm:"column:masterPasswordHash"`
	SetupCompleted     bool    `json:"setupCompleted" gorm:"column:setupCompleted"`
	CreatedAt          string  `json:"createdAt" gorm:"column:createdAt"`
	UpdatedAt          string  `json:"updatedAt" gorm:"column:updatedAt"`
}

// TableName table name
func (Settings) TableName() string {
	return "settings"
}

// HasPassword reports whether a master password hash is stored.
func (s *Settings) HasPassword() bool {
	return s.MasterPasswordHash != nil && *s.MasterPasswordHash != ""
}

// Profile public part of the settings row
type Profile struct {
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage"`
	Currency     string  `json:"currency"`
}

// Profile returns the profile with defaults for unset values.
func (s *Settings) Profile() Profile {
	p := Profile{Name: s.Name, ProfileImage: s.ProfileImage, Currency: DefaultCurrency}
	if p.Name == "" {
		p.Name = DefaultName
	}
	if s.Currency != nil && *s.Currency != "" {
		p.Currency = *s.Currency
	}
	if p.ProfileImage != nil && *p.ProfileImage == "" {
		p.ProfileImage = nil
	}
	return p
}
