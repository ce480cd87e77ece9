package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fintrack/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrClosed is returned by every operation on a closed store.
	ErrClosed = errors.New("database is closed")
	// ErrPersist marks a failed snapshot write; the message names the file.
	ErrPersist = errors.New("failed to save database")
)

// Store owns the single database file. Rows live in a private in-memory SQLite
// database; every mutation is followed by a full snapshot of it to the file.
type Store struct {
	mu     sync.RWMutex
	db     *gorm.DB
	sqlDB  *sql.DB
	path   string
	now    func() time.Time
	closed bool
}

type options struct {
	now     func() time.Time
	logMode bool
}

// Option configures Open
type Option func(*options)

// WithClock replaces time.Now for timestamps and date windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogMode enables gorm SQL logging.
func WithLogMode(enabled bool) Option {
	return func(o *options) { o.logMode = enabled }
}

// Open loads path into memory (or starts empty when it does not exist), creates missing
// tables, makes sure the settings row exists and writes the result back. Opening an
// already initialised file changes nothing but its bytes.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if o.logMode {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// the in-memory database lives as long as this one connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	s := &Store{db: db, sqlDB: sqlDB, path: path, now: o.now}
	if err := s.load(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := s.bootstrap(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("bootstrap %s: %w", path, err)
	}
	if err := s.persist(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Printf("database ready: %s", path)
	return s, nil
}

type schemaObject struct {
	Type string `gorm:"column:type"`
	Name string `gorm:"column:name"`
	SQL  string `gorm:"column:sql"`
}

// load copies schema, rows and autoincrement counters of the file into memory.
func (s *Store) load() (err error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	if err := s.db.Exec("ATTACH DATABASE ? AS disk", s.path).Error; err != nil {
		return err
	}
	defer func() {
		if derr := s.db.Exec("DETACH DATABASE disk").Error; err == nil {
			err = derr
		}
	}()

	var objects []schemaObject
	if err := s.db.Raw(`SELECT type, name, sql FROM disk.sqlite_master
		WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%'
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, rowid`).Scan(&objects).Error; err != nil {
		return err
	}

	for _, obj := range objects {
		if obj.Type != "table" {
			continue
		}
		if err := s.db.Exec(obj.SQL).Error; err != nil {
			return fmt.Errorf("create %s: %w", obj.Name, err)
		}
		copyRows := fmt.Sprintf("INSERT INTO main.%s SELECT * FROM disk.%s", quote(obj.Name), quote(obj.Name))
		if err := s.db.Exec(copyRows).Error; err != nil {
			return fmt.Errorf("copy %s: %w", obj.Name, err)
		}
	}
	for _, obj := range objects {
		if obj.Type == "table" {
			continue
		}
		if err := s.db.Exec(obj.SQL).Error; err != nil {
			return fmt.Errorf("create %s %s: %w", obj.Type, obj.Name, err)
		}
	}

	// deleted ids must stay burnt after a reload
	var sequences int64
	if err := s.db.Raw("SELECT count(*) FROM disk.sqlite_master WHERE name = 'sqlite_sequence'").Scan(&sequences).Error; err != nil {
		return err
	}
	if sequences > 0 {
		if err := s.db.Exec("DELETE FROM main.sqlite_sequence").Error; err != nil {
			return err
		}
		if err := s.db.Exec("INSERT INTO main.sqlite_sequence (name, seq) SELECT name, seq FROM disk.sqlite_sequence").Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) bootstrap() error {
	for _, stmt := range schema {
		if err := s.db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	var count int64
	if err := s.db.Table("settings").Where("id = ?", models.SettingsID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		now := s.Timestamp()
		if err := s.db.Exec(`INSERT INTO settings (id, name, currency, setupCompleted, createdAt, updatedAt)
			VALUES (?, ?, ?, 0, ?, ?)`, models.SettingsID, models.DefaultName, models.DefaultCurrency, now, now).Error; err != nil {
			return err
		}
	}
	return nil
}

// Persist writes the whole database to the backing file.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.persist()
}

// persist snapshots into a temp file and renames it over the old one, so an interrupted
// write leaves the previous snapshot in place.
func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w %s: %w", ErrPersist, s.path, err)
	}
	if err := s.db.Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return fmt.Errorf("%w %s: %w", ErrPersist, s.path, err)
	}
	if err := syncFile(tmp); err != nil {
		return fmt.Errorf("%w %s: %w", ErrPersist, s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w %s: %w", ErrPersist, s.path, err)
	}
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read runs fn against the database. fn must not keep the handle.
func (s *Store) Read(fn func(db *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(s.db)
}

// Mutate runs fn and persists before returning. Nothing else runs on the store meanwhile.
func (s *Store) Mutate(fn func(db *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := fn(s.db); err != nil {
		return err
	}
	return s.persist()
}

// Close persists once more and releases the in-memory database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	err := s.persist()
	s.closed = true
	if cerr := s.sqlDB.Close(); err == nil {
		err = cerr
	}
	return err
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Now returns the store clock in UTC.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// Today returns the current calendar date in the local zone of the clock.
func (s *Store) Today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Timestamp returns Now formatted for createdAt/updatedAt.
func (s *Store) Timestamp() string {
	return s.Now().Format(models.TimestampLayout)
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
