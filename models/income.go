package models

// Income income record
type Income struct {
	ID          int64   `json:"id" gorm:"column:id;primaryKey"`
	Description string  `json:"description" gorm:"column:description"`
	Amount      float64 `json:"amount" gorm:"column:amount"`
	Date        string  `json:"date" gorm:"column:date"`
	Category    *string `json:"category" gorm:"column:category"`
	Provider    *string `json:"provider" gorm:"column:provider"`
	Icon        *string `json:"icon" gorm:"column:icon"`
	CreatedAt   string  `json:"createdAt" gorm:"column:createdAt"`
	UpdatedAt   string  `json:"updatedAt" gorm:"column:updatedAt"`
}

// TableName table name
func (Income) TableName() string {
	return string(KindIncome)
}
