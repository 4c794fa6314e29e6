package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/newsbrief/domain/repository"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("entity not found")

// EntityMapper defines the interface for mapping between domain and database model types.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository provides generic read operations for database entities
// using repository.Option-based queries.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
}

// NewRepository creates a new Repository.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{
		db:     db,
		mapper: mapper,
		label:  label,
	}
}

// Find retrieves entities matching the given options.
func (r Repository[D, E]) Find(ctx context.Context, options ...repository.Option) ([]D, error) {
	return r.FindTx(r.db.Session(ctx), options...)
}

// FindTx is Find inside an existing session or transaction.
func (r Repository[D, E]) FindTx(tx *gorm.DB, options ...repository.Option) ([]D, error) {
	var entities []E
	result := ApplyOptions(tx.Model(new(E)), options...).Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, result.Error)
	}

	domains := make([]D, len(entities))
	for i, entity := range entities {
		domains[i] = r.mapper.ToDomain(entity)
	}
	return domains, nil
}

// FindOne retrieves a single entity matching the given options.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...repository.Option) (D, error) {
	return r.FindOneTx(r.db.Session(ctx), options...)
}

// FindOneTx is FindOne inside an existing session or transaction.
func (r Repository[D, E]) FindOneTx(tx *gorm.DB, options ...repository.Option) (D, error) {
	var entity E
	var zero D
	result := ApplyOptions(tx, options...).First(&entity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, r.label)
		}
		return zero, fmt.Errorf("find one %s: %w", r.label, result.Error)
	}
	return r.mapper.ToDomain(entity), nil
}

// Count returns the number of entities matching the given options.
func (r Repository[D, E]) Count(ctx context.Context, options ...repository.Option) (int64, error) {
	return r.CountTx(r.db.Session(ctx), options...)
}

// CountTx is Count inside an existing session or transaction.
func (r Repository[D, E]) CountTx(tx *gorm.DB, options ...repository.Option) (int64, error) {
	var count int64
	if result := ApplyConditions(tx.Model(new(E)), options...).Count(&count); result.Error != nil {
		return 0, fmt.Errorf("count %s: %w", r.label, result.Error)
	}
	return count, nil
}

// Exists checks if any entity matches the given options.
func (r Repository[D, E]) Exists(ctx context.Context, options ...repository.Option) (bool, error) {
	count, err := r.Count(ctx, options...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DB returns a GORM session bound to ctx.
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.db.Session(ctx)
}

// Database returns the underlying database.
func (r Repository[D, E]) Database() Database {
	return r.db
}

// Mapper returns the entity mapper for external use.
func (r Repository[D, E]) Mapper() EntityMapper[D, E] {
	return r.mapper
}
