package levels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LevelRecord is the GORM model for a stored level
type LevelRecord struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Body      string    `gorm:"column:body;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (LevelRecord) TableName() string { return "levels" }

// GormStore keeps levels in PostgreSQL through GORM
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres opens a GORM connection to PostgreSQL
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewGormStore migrates the levels table and returns a store over db
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&LevelRecord{}); err != nil {
		return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("migrate levels: %w", err)}
	}
	return &GormStore{db: db}, nil
}

// Load reads a level's text
func (s *GormStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, &PersistenceError{Op: "load", Name: name, Err: err}
	}

	var row LevelRecord
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &PersistenceError{Op: "load", Name: name, Err: ErrLevelNotFound}
		}
		return nil, &PersistenceError{Op: "load", Name: name, Err: err}
	}
	return []byte(row.Body), nil
}

// Save upserts a level's text
func (s *GormStore) Save(ctx context.Context, name string, text []byte) error {
	if err := ValidateName(name); err != nil {
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}

	row := LevelRecord{Name: name, Body: string(text), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}
	return nil
}

// List returns all level names, sorted
func (s *GormStore) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&LevelRecord{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return names, nil
}

// Close closes the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
