package database

import (
	"fmt"

	"github.com/helixml/newsbrief/domain/repository"
	"gorm.io/gorm"
)

// ApplyOptions renders the query built from options onto a GORM session.
func ApplyOptions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	q := repository.Build(options...)
	db = where(db, q.Conditions())

	for _, ord := range q.Orders() {
		db = db.Order(orderClause(ord))
	}
	if n := q.LimitValue(); n > 0 {
		db = db.Limit(n)
	}
	if n := q.OffsetValue(); n > 0 {
		db = db.Offset(n)
	}
	return db
}

// ApplyConditions renders only the WHERE clauses, for counts and updates.
func ApplyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return where(db, repository.Build(options...).Conditions())
}

func orderClause(o repository.Order) string {
	if o.Ascending() {
		return o.Field() + " ASC"
	}
	return o.Field() + " DESC"
}

func where(db *gorm.DB, conds []repository.Condition) *gorm.DB {
	for _, c := range conds {
		args := c.Args()
		switch c.Kind() {
		case repository.ConditionIn:
			db = db.Where(c.Field()+" IN ?", c.Value())
		case repository.ConditionNull:
			db = db.Where(c.Field() + " IS NULL")
		case repository.ConditionNotNull:
			db = db.Where(c.Field() + " IS NOT NULL")
		case repository.ConditionAtLeast:
			db = db.Where(c.Field()+" >= ?", c.Value())
		case repository.ConditionRange:
			db = db.Where(fmt.Sprintf("%[1]s >= ? AND %[1]s < ?", c.Field()), args[0], args[1])
		default:
			db = db.Where(c.Field()+" = ?", c.Value())
		}
	}
	return db
}
