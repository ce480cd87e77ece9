package models

// Image cached icon or avatar, addressed by ImageKey
type Image struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey"`
	ImageKey  string `json:"imageKey" gorm:"column:imageKey"`
	Data      []byte `json:"-" gorm:"column:data"`
	MimeType  string `json:"mimeType" gorm:"column:mimeType"`
	CreatedAt string `json:"createdAt" gorm:"column:createdAt"`
}

// TableName table name
func (Image) TableName() string {
	return "image_cache"
}
