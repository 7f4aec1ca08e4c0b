// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, the implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// Nested calls reuse the existing transaction from context.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only snapshot support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction that sees a single
	// consistent snapshot of the database.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Passthrough is a ReadOnlyManager that runs fn directly without a transaction.
// Used by tests and by callers that have no database behind their repositories.
type Passthrough struct{}

// RunInTransaction implements Manager.
func (Passthrough) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReadOnly implements ReadOnlyManager.
func (Passthrough) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
