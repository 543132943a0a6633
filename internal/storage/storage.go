// Package storage defines the Store interface — the contract any record
// backend must satisfy to work with this application.
//
// Services depend only on this interface, never on GORM or a concrete
// database, so tests can pass a fake and the backend can be swapped by
// changing main.go alone.
package storage

import "context"

// Store is the per-entity table contract. T is the entity value type
// (types.Student, types.Product, ...).
//
// Every method receives the request context; implementations must abort
// the underlying call when it is cancelled. Errors returned are storage
// faults and are not interpreted by callers.
type Store[T any] interface {
	// Insert writes a new row. The store assigns the identity and writes
	// it back into e.
	Insert(ctx context.Context, e *T) error

	// FindByID returns the row with the given identity, or nil (and a nil
	// error) when there is none.
	FindByID(ctx context.Context, id int64) (*T, error)

	// FindAll returns every row in primary-key order. The slice is empty,
	// not nil, when the table is empty.
	FindAll(ctx context.Context) ([]T, error)

	// Replace overwrites every column of the row identified by e's
	// identity. It reports false when no such row exists; nothing is
	// inserted in that case.
	Replace(ctx context.Context, e *T) (bool, error)

	// Delete removes the row with the given identity.
	Delete(ctx context.Context, id int64) error
}
