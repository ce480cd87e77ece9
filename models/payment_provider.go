package models

// PaymentProvider account or wallet that income/outgoing rows name in their provider field
type PaymentProvider struct {
	ID            int64   `json:"id" gorm:"column:id;primaryKey"`
	Name          string  `json:"name" gorm:"column:name"`
	Type          string  `json:"type" gorm:"column:type"`
	AccountNumber *string `json:"accountNumber" gorm:"column:accountNumber"`
	Notes         *string `json:"notes" gorm:"column:notes"`
	Icon          *string `json:"icon" gorm:"column:icon"`
	CreatedAt     string  `json:"createdAt" gorm:"column:createdAt"`
	UpdatedAt     string  `json:"updatedAt" gorm:"column:updatedAt"`
}

// TableName table name
func (PaymentProvider) TableName() string {
	return string(KindPaymentProviders)
}

// Provider types
const (
	ProviderBank       = "bank"
	ProviderCreditCard = "credit_card"
	ProviderPayPal     = "paypal"
	ProviderCrypto     = "crypto"
	ProviderCash       = "cash"
	ProviderOther      = "other"
)

// GetProviderTypes returns all provider types
func GetProviderTypes() []string {
	return []string{
		ProviderBank,
		ProviderCreditCard,
		ProviderPayPal,
		ProviderCrypto,
		ProviderCash,
		ProviderOther,
	}
}
