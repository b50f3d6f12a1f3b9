package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it.
// Repositories hang off Store and Tx so a caller inside a transaction cannot
// accidentally reach for the non-transactional handle.
type Store interface {
	Flags() Flags

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Flags persists flag records. It knows nothing about the hierarchy beyond
// the parent_id column; placement rules live in the service.
type Flags interface {
	GetFlagByID(ctx context.Context, id string) (domain.Flag, error)
	GetFlagByName(ctx context.Context, name string) (domain.Flag, error)
	FlagExists(ctx context.Context, name string) (bool, error)

	// ListFlags returns every record ordered by name.
	ListFlags(ctx context.Context) ([]domain.Flag, error)
	CountFlags(ctx context.Context) (int64, error)

	// CreateFlag inserts f. A taken name yields ErrAlreadyExists.
	CreateFlag(ctx context.Context, f domain.Flag) error

	// The update methods bump updated_at and return ErrNotFound when no row matched.
	UpdateFlagEnabled(ctx context.Context, id string, enabled bool) error
	UpdateFlagDetails(ctx context.Context, id, displayName, description string) error
	UpdateFlagParent(ctx context.Context, id string, parentID *string) error

	// DeleteFlag removes the record; descendants go with it (ON DELETE CASCADE).
	DeleteFlag(ctx context.Context, id string) error
}
