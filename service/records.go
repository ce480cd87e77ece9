package service

import (
	"fmt"

	"fintrack/database"
	"fintrack/models"

	"gorm.io/gorm"
)

// RecordService generic CRUD over the whitelisted entity kinds. Ids and timestamps are
// assigned here and nowhere else.
type RecordService struct {
	store *database.Store
}

// NewRecordService creates the record gateway
func NewRecordService(store *database.Store) *RecordService {
	return &RecordService{store: store}
}

func checkKind(kind models.Kind) error {
	_, err := models.ParseKind(string(kind))
	return err
}

// List returns every row of kind, newest first.
func (s *RecordService) List(kind models.Kind) ([]models.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	err := s.store.Read(func(db *gorm.DB) error {
		return db.Table(kind.Table()).Order("createdAt DESC").Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Decode(kind, row))
	}
	return out, nil
}

// Get returns one row, or nil when id does not exist.
func (s *RecordService) Get(kind models.Kind, id int64) (models.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	err := s.store.Read(func(db *gorm.DB) error {
		return db.Table(kind.Table()).Where("id = ?", id).Limit(1).Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return models.Decode(kind, rows[0]), nil
}

// Insert stores a new row and returns its id. Caller supplied id and timestamps are ignored.
func (s *RecordService) Insert(kind models.Kind, fields models.Record) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	rec, err := models.Normalize(kind, fields, nil)
	if err != nil {
		return 0, err
	}
	now := s.store.Timestamp()
	rec["createdAt"] = now
	rec["updatedAt"] = now

	var id int64
	err = s.store.Mutate(func(db *gorm.DB) error {
		if err := db.Table(kind.Table()).Create(map[string]interface{}(rec)).Error; err != nil {
			return err
		}
		return db.Raw("SELECT last_insert_rowid()").Scan(&id).Error
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	return id, nil
}

// Update merges fields into row id and returns the number of rows modified, 0 when the
// row does not exist.
func (s *RecordService) Update(kind models.Kind, id int64, fields models.Record) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	if err := models.Check(kind, fields); err != nil {
		return 0, err
	}

	var modified int64
	err := s.store.Mutate(func(db *gorm.DB) error {
		var rows []map[string]interface{}
		if err := db.Table(kind.Table()).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		merged, err := models.Normalize(kind, fields, models.Decode(kind, rows[0]))
		if err != nil {
			return err
		}
		merged["updatedAt"] = s.store.Timestamp()

		res := db.Table(kind.Table()).Where("id = ?", id).Updates(map[string]interface{}(merged))
		if res.Error != nil {
			return res.Error
		}
		modified = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	return modified, nil
}

// Delete removes row id and returns the number of rows deleted.
func (s *RecordService) Delete(kind models.Kind, id int64) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	var deleted int64
	err := s.store.Mutate(func(db *gorm.DB) error {
		res := db.Exec("DELETE FROM "+kind.Table()+" WHERE id = ?", id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return deleted, nil
}
