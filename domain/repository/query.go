// Package repository defines store-agnostic query options.
package repository

import "fmt"

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions, ordering, and pagination for store lookups.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// LimitValue returns the limit (0 means no limit).
func (q Query) LimitValue() int {
	return q.limit
}

// OffsetValue returns the offset.
func (q Query) OffsetValue() int {
	return q.offset
}

// ConditionKind distinguishes how a condition is rendered.
type ConditionKind int

// ConditionKind values.
const (
	ConditionEqual ConditionKind = iota
	ConditionIn
	ConditionNull
	ConditionNotNull
	ConditionAtLeast
	// ConditionRange is half-open: from <= field < to.
	ConditionRange
)

// Condition is a single WHERE clause.
type Condition struct {
	kind  ConditionKind
	field string
	args  []any
}

// Kind returns how the condition is rendered.
func (c Condition) Kind() ConditionKind { return c.kind }

// Field returns the column name.
func (c Condition) Field() string { return c.field }

// Value returns the first bound value. For a range it is the lower bound.
func (c Condition) Value() any {
	if len(c.args) == 0 {
		return nil
	}
	return c.args[0]
}

// Args returns every bound value.
func (c Condition) Args() []any {
	result := make([]any, len(c.args))
	copy(result, c.args)
	return result
}

// String returns a readable representation.
func (c Condition) String() string {
	switch c.kind {
	case ConditionIn:
		return fmt.Sprintf("%s IN %v", c.field, c.Value())
	case ConditionNull:
		return c.field + " IS NULL"
	case ConditionNotNull:
		return c.field + " IS NOT NULL"
	case ConditionAtLeast:
		return fmt.Sprintf("%s >= %v", c.field, c.Value())
	case ConditionRange:
		return fmt.Sprintf("%v <= %s < %v", c.args[0], c.field, c.args[1])
	default:
		return fmt.Sprintf("%s = %v", c.field, c.Value())
	}
}

// Order represents a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// Ascending returns true for ASC, false for DESC.
func (o Order) Ascending() bool { return o.ascending }

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return withCondition(Condition{kind: ConditionEqual, field: field, args: []any{value}})
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return withCondition(Condition{kind: ConditionIn, field: field, args: []any{values}})
}

// WithNull matches rows where field is NULL.
func WithNull(field string) Option {
	return withCondition(Condition{kind: ConditionNull, field: field})
}

// WithNotNull matches rows where field is not NULL.
func WithNotNull(field string) Option {
	return withCondition(Condition{kind: ConditionNotNull, field: field})
}

// WithAtLeast matches rows where field >= value.
func WithAtLeast(field string, value any) Option {
	return withCondition(Condition{kind: ConditionAtLeast, field: field, args: []any{value}})
}

// WithRange matches rows where from <= field < to.
func WithRange(field string, from, to any) Option {
	return withCondition(Condition{kind: ConditionRange, field: field, args: []any{from, to}})
}

func withCondition(c Condition) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, c)
		return q
	}
}

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOffset sets the result offset.
func WithOffset(n int) Option {
	return func(q Query) Query {
		q.offset = n
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: false})
		return q
	}
}
