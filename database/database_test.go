package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finance_tracker.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func countRows(t *testing.T, s *Store, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.Read(func(db *gorm.DB) error {
		return db.Table(table).Count(&n).Error
	}))
	return n
}

func TestOpen_CreatesFileAndSettings(t *testing.T) {
	s, path := openTemp(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	for _, table := range Tables {
		var n int64
		require.NoError(t, s.Read(func(db *gorm.DB) error {
			return db.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n).Error
		}), table)
		assert.Equal(t, int64(1), n, table)
	}

	var settings models.Settings
	require.NoError(t, s.Read(func(db *gorm.DB) error {
		return db.First(&settings, models.SettingsID).Error
	}))
	assert.Equal(t, "User", settings.Name)
	require.NotNil(t, settings.Currency)
	assert.Equal(t, "EUR", *settings.Currency)
	assert.False(t, settings.SetupCompleted)
	assert.NotEmpty(t, settings.CreatedAt)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Mutate(func(db *gorm.DB) error {
		return db.Exec(`INSERT INTO income (description, amount, date, createdAt, updatedAt)
			VALUES ('Salary', 100, '2024-01-15', 'x', 'x')`).Error
	}))
	var before models.Settings
	require.NoError(t, s.Read(func(db *gorm.DB) error { return db.First(&before, 1).Error }))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	assert.Equal(t, int64(1), countRows(t, again, "settings"))
	assert.Equal(t, int64(1), countRows(t, again, "income"))

	var after models.Settings
	require.NoError(t, again.Read(func(db *gorm.DB) error { return db.First(&after, 1).Error }))
	assert.Equal(t, before, after)
}

func TestMutate_PersistsImmediately(t *testing.T) {
	s, path := openTemp(t)

	require.NoError(t, s.Mutate(func(db *gorm.DB) error {
		return db.Exec(`INSERT INTO payment_providers (name, type) VALUES ('Bank', 'bank')`).Error
	}))

	// a second handle sees the row without the first being closed
	other, err := Open(path)
	require.NoError(t, err)
	defer other.Close()
	assert.Equal(t, int64(1), countRows(t, other, "payment_providers"))
	assert.Equal(t, int64(1), countRows(t, s, "payment_providers"))
}

func TestAutoincrement_SurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	s, err := Open(path)
	require.NoError(t, err)

	insert := func(s *Store) int64 {
		var id int64
		require.NoError(t, s.Mutate(func(db *gorm.DB) error {
			if err := db.Exec(`INSERT INTO outgoing (description, amount, date) VALUES ('Rent', 900, '2024-01-01')`).Error; err != nil {
				return err
			}
			return db.Raw("SELECT last_insert_rowid()").Scan(&id).Error
		}))
		return id
	}

	first := insert(s)
	second := insert(s)
	require.NoError(t, s.Mutate(func(db *gorm.DB) error {
		return db.Exec("DELETE FROM outgoing WHERE id = ?", second).Error
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	third := insert(s)
	assert.Equal(t, first+1, second)
	assert.Greater(t, third, second)
}

func TestOpen_RejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("definitely not a database file. ", 64)), 0o600))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestClose_Twice(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	err := s.Read(func(db *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	err = s.Mutate(func(db *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Persist(), ErrClosed)
}

func TestPersist_FailurePropagates(t *testing.T) {
	s, path := openTemp(t)

	// replace the file by a non-empty directory so the final rename fails
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o755))

	err := s.Mutate(func(db *gorm.DB) error {
		return db.Exec(`INSERT INTO payment_providers (name, type) VALUES ('Cash', 'cash')`).Error
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Contains(t, err.Error(), path)
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 3, 5, 22, 30, 0, 0, time.FixedZone("CET", 3600))
	path := filepath.Join(t.TempDir(), "db.sqlite")
	s, err := Open(path, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "2024-03-05T21:30:00.000Z", s.Timestamp())
	assert.Equal(t, "2024-03-05", s.Today().Format(models.DateLayout))
	assert.Equal(t, path, s.Path())
}
