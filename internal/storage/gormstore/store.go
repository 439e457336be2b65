// Package gormstore implements storage.Store on postgres through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

// Store implements storage.Store using GORM.
type Store struct {
	db *gorm.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// WithTransaction implements transaction support. Serialization failures and
// deadlocks surface as storage.ErrConflict.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx storage.Store) error) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	return translate(err)
}

// postgres SQLSTATE codes
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %s", storage.ErrConflict, pgErr.Message)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, pgErr.Detail)
	}
	return err
}

func take[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate(err)
	}
	return &out, nil
}
