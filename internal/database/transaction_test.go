package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newItemsDB(t *testing.T) Database {
	t.Helper()
	ctx := context.Background()

	db, err := NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Session(ctx).Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)").Error)
	return db
}

func countItems(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Session(context.Background()).Raw("SELECT COUNT(*) FROM test_items").Scan(&count).Error)
	return count
}

func TestWithTransaction_Success(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countItems(t, db))
}

func TestWithTransaction_Error(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	testErr := errors.New("test error")
	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error; err != nil {
			return err
		}
		return testErr
	})
	assert.ErrorIs(t, err, testErr)

	assert.Equal(t, int64(0), countItems(t, db))
}

func TestWithTransaction_Panic(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	assert.Panics(t, func() {
		_ = WithTransaction(ctx, db, func(tx *gorm.DB) error {
			_ = tx.Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error
			panic("boom")
		})
	})

	assert.Equal(t, int64(0), countItems(t, db))
}

func TestWithTransaction_IndependentItems(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	names := []string{"keep1", "fail", "keep2"}
	for _, name := range names {
		_ = WithTransaction(ctx, db, func(tx *gorm.DB) error {
			if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", name).Error; err != nil {
				return err
			}
			if name == "fail" {
				return errors.New("item failed")
			}
			return nil
		})
	}

	assert.Equal(t, int64(2), countItems(t, db))
}

func TestWithTransactionResult_Success(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	result, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (int, error) {
		var val int
		if err := tx.Raw("SELECT 42").Scan(&val).Error; err != nil {
			return 0, err
		}
		return val, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestWithTransactionResult_Error(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	testErr := errors.New("test error")
	result, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (int, error) {
		return 7, testErr
	})
	assert.ErrorIs(t, err, testErr)
	assert.Equal(t, 0, result)
}
