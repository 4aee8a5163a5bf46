package levels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"
)

// Store kinds accepted by Open
const (
	KindDir      = "dir"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindGorm     = "gorm"
)

// Open creates the store selected by kind. dir is used by the directory
// store and as the default location of the SQLite file, dsn by the
// database stores.
func Open(ctx context.Context, kind, dir, dsn string) (Store, error) {
	switch kind {
	case "", KindDir:
		s, err := NewDirStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindSQLite:
		if dsn == "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, &PersistenceError{Op: "open", Err: err}
			}
			dsn = filepath.Join(dir, "levels.db")
		}
		return openSQL(ctx, DriverSQLite, dsn)
	case KindPostgres:
		return openSQL(ctx, DriverPostgres, dsn)
	case KindGorm:
		db, err := OpenPostgres(dsn)
		if err != nil {
			return nil, &PersistenceError{Op: "open", Err: err}
		}
		return openGorm(ctx, db)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStore, kind)
}

func openSQL(ctx context.Context, driver, dsn string) (Store, error) {
	s, err := NewSQLStore(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openGorm builds the store over db and closes the pool when that fails
func openGorm(ctx context.Context, db *gorm.DB) (Store, error) {
	s, err := NewGormStore(ctx, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return s, nil
}
