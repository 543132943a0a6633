// Package gormstore implements storage.Store on top of GORM. One generic
// Store type serves every entity; the table is derived from T's
// TableName method.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aanand-mishra/crud-api/internal/storage"
	"github.com/aanand-mishra/crud-api/internal/types"
)

// Store is a GORM-backed storage.Store for entity type T.
// A *gorm.DB is safe for concurrent use, so one Store can be shared by
// every request goroutine.
type Store[T any] struct {
	db *gorm.DB
}

var (
	_ storage.Store[types.Student] = (*Store[types.Student])(nil)
	_ storage.Store[types.Product] = (*Store[types.Product])(nil)
)

// New returns a Store for T using db.
func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// Migrate creates or alters the tables for every known entity.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&types.Student{}, &types.Product{}); err != nil {
		return fmt.Errorf("gormstore.Migrate: %w", err)
	}
	return nil
}

func (s *Store[T]) Insert(ctx context.Context, e *T) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var e T
	err := s.db.WithContext(ctx).Take(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w", err)
	}
	return &e, nil
}

func (s *Store[T]) FindAll(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("FindAll: %w", err)
	}
	return out, nil
}

// Replace issues UPDATE ... SET <all columns> WHERE id = ?. Select("*")
// makes GORM write zero values too, so the row ends up equal to e.
func (s *Store[T]) Replace(ctx context.Context, e *T) (bool, error) {
	res := s.db.WithContext(ctx).Model(e).Select("*").Updates(e)
	if res.Error != nil {
		return false, fmt.Errorf("Replace: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(new(T), id).Error; err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}
