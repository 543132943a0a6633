// Package service implements the create/read/update/delete contract once,
// generically, for every entity type.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/crud-api/internal/storage"
	"github.com/aanand-mishra/crud-api/internal/types"
)

// ErrNotFound is returned by Update when the addressed row does not exist.
// Update never creates rows.
var ErrNotFound = errors.New("record not found")

// Service is the CRUD service for entity type T. P is *T; it is inferred,
// so callers write service.New[types.Student](store).
//
// Service keeps no state beyond the store and is safe for concurrent use.
type Service[T any, P types.Entity[T]] struct {
	store storage.Store[T]
}

// New returns a Service backed by store.
func New[T any, P types.Entity[T]](store storage.Store[T]) *Service[T, P] {
	return &Service[T, P]{store: store}
}

// GetAll returns every record in store order.
func (s *Service[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return s.store.FindAll(ctx)
}

// GetByID returns the record or nil when it does not exist.
func (s *Service[T, P]) GetByID(ctx context.Context, id int64) (*T, error) {
	return s.store.FindByID(ctx, id)
}

// Create inserts e and returns it with the store-assigned id. Any id set
// on e by the caller is discarded.
func (s *Service[T, P]) Create(ctx context.Context, e T) (T, error) {
	P(&e).SetIdentity(0)
	if err := s.store.Insert(ctx, &e); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}

// Update replaces every field of record id with e.
//
// It returns false, without touching the store, when e carries a
// different id than the one addressed. It returns ErrNotFound when no
// record has that id.
func (s *Service[T, P]) Update(ctx context.Context, id int64, e T) (bool, error) {
	if P(&e).Identity() != id {
		return false, nil
	}
	if id <= 0 {
		return false, fmt.Errorf("update %d: %w", id, ErrNotFound)
	}

	ok, err := s.store.Replace(ctx, &e)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	return true, nil
}

// Delete removes record id. It returns false when the record does not
// exist; a second Delete of the same id is therefore not an error.
func (s *Service[T, P]) Delete(ctx context.Context, id int64) (bool, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
