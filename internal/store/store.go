// Package store persists sandbox environments, endpoints, scenarios and
// request logs through GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// duplicate maps unique constraint violations of either dialect to
// ErrDuplicate.
func duplicate(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
	default:
		return err
	}
	return fmt.Errorf("%w: %v", ErrDuplicate, err)
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects with the named driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("an error occured when attempting to connect to the database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db), nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.db.WithContext(ctx).AutoMigrate(m.All()...); err != nil {
		return fmt.Errorf("an error occured when tried to migrate the schema: %w", err)
	}
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	tables := m.All()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := s.db.WithContext(ctx).Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("error while flushing database: %w", err)
		}
	}
	return nil
}

// SyncSequences moves postgres id sequences past rows inserted with
// explicit ids, such as the demo environment.
func (s *Store) SyncSequences(ctx context.Context) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, table := range []string{"environments", "endpoints", "scenarios"} {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table,
		)
		if err := s.db.WithContext(ctx).Exec(q).Error; err != nil {
			return fmt.Errorf("sync %s sequence: %w", table, err)
		}
	}
	return nil
}
