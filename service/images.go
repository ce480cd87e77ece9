package service

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fintrack/database"
	"fintrack/models"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"
)

// ImageService BLOB cache for icons and avatars
type ImageService struct {
	store *database.Store
}

// NewImageService creates the image cache
func NewImageService(store *database.Store) *ImageService {
	return &ImageService{store: store}
}

// Save stores data under key. An existing key is overwritten in place and keeps its id
// and createdAt.
func (s *ImageService) Save(key string, data []byte, mimeType string) (int64, error) {
	if key == "" {
		return 0, models.Invalid("imageKey", "is required")
	}
	if mimeType == "" {
		return 0, models.Invalid("mimeType", "is required")
	}
	if data == nil {
		data = []byte{}
	}

	var id int64
	err := s.store.Mutate(func(db *gorm.DB) error {
		var existing []models.Image
		if err := db.Select("id").Where("imageKey = ?", key).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) > 0 {
			id = existing[0].ID
			return db.Model(&models.Image{}).Where("id = ?", id).Updates(map[string]interface{}{
				"data":     data,
				"mimeType": mimeType,
			}).Error
		}

		img := models.Image{ImageKey: key, Data: data, MimeType: mimeType, CreatedAt: s.store.Timestamp()}
		if err := db.Create(&img).Error; err != nil {
			return err
		}
		id = img.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save image %s: %w", key, err)
	}
	return id, nil
}

// Get returns the image stored under key, or nil.
func (s *ImageService) Get(key string) (*models.Image, error) {
	var images []models.Image
	err := s.store.Read(func(db *gorm.DB) error {
		return db.Where("imageKey = ?", key).Limit(1).Find(&images).Error
	})
	if err != nil {
		return nil, fmt.Errorf("get image %s: %w", key, err)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0], nil
}

// Delete removes key and returns the number of rows deleted. Icons still naming the key
// keep a dangling reference.
func (s *ImageService) Delete(key string) (int64, error) {
	var deleted int64
	err := s.store.Mutate(func(db *gorm.DB) error {
		res := db.Where("imageKey = ?", key).Delete(&models.Image{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete image %s: %w", key, err)
	}
	return deleted, nil
}

// NewImageKey builds the {category}_{epochMillis} key of an upload.
func NewImageKey(category string, now time.Time) string {
	if category == "" {
		category = "image"
	}
	return fmt.Sprintf("%s_%d", category, now.UnixMilli())
}

// DetectMimeType sniffs data and falls back to the file extension. The second result is
// false when the payload is not an image.
func DetectMimeType(filename string, data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	if strings.HasPrefix(detected.String(), "image/") {
		return detected.String(), true
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "svg":
		return "image/svg+xml", true
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "png", "gif", "webp":
		return "image/" + ext, true
	}
	return detected.String(), false
}

// DataURI encodes img for direct display.
func DataURI(img *models.Image) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))
}

// Upload stores an uploaded file under a fresh {category}_{epochMillis} key and returns
// the key. Payloads that are not images are rejected.
func (s *ImageService) Upload(category, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", models.Invalid("file", "is empty")
	}
	mimeType, ok := DetectMimeType(filename, data)
	if !ok {
		return "", models.Invalid("file", "is not an image (%s)", mimeType)
	}
	key := NewImageKey(category, s.store.Now())
	if _, err := s.Save(key, data, mimeType); err != nil {
		return "", err
	}
	return key, nil
}
