package database

import (
	"context"

	"gorm.io/gorm"
)

// WithTransaction executes fn within a transaction, committing on success and
// rolling back when fn returns an error or panics.
// With SQLite the transaction holds the only connection, so fn must issue
// every query through tx.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	return db.Session(ctx).Transaction(fn)
}

// WithTransactionResult executes fn within a transaction, returning its result on commit.
func WithTransactionResult[T any](ctx context.Context, db Database, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var result T
	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		result, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
