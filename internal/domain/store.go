package domain

import (
	"context"
)

// StoreError represents an error originating from a key-value store.
type StoreError string

func (e StoreError) Error() string {
	return string(e)
}

// ErrKeyNotFound is returned when a key is not present in the store.
const ErrKeyNotFound = StoreError("store: key not found")

// KVStore is the port for the persistent key-value storage holding the
// serialized profile. Implementations are the file and Redis adapters.
type KVStore interface {
	// Get returns the value stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value at key.
	Set(ctx context.Context, key string, value string) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// BankRepository persists the active question bank.
type BankRepository interface {
	// Load returns the stored records in their original order.
	Load(ctx context.Context) ([]RawRecord, error)

	// Replace swaps the stored bank for records in one step.
	Replace(ctx context.Context, records []QuestionRecord) error
}

// TransactionManager runs fn inside a single database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
