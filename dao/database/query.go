package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter is one condition of a Query. Column names are trusted: they only
// ever come from this codebase, never from request input.
type Filter struct {
	column string
	op     string
	value  any
	anyOf  []Filter
}

func Eq(column string, value any) Filter  { return Filter{column: column, op: "=", value: value} }
func Neq(column string, value any) Filter { return Filter{column: column, op: "<>", value: value} }
func Lt(column string, value any) Filter  { return Filter{column: column, op: "<", value: value} }
func Gte(column string, value any) Filter { return Filter{column: column, op: ">=", value: value} }

// In matches column against a slice of values.
func In(column string, values any) Filter { return Filter{column: column, op: "in", value: values} }

func IsNull(column string) Filter { return Filter{column: column, op: "null"} }

// ILike is a case-insensitive LIKE with a caller-supplied pattern.
func ILike(column, pattern string) Filter {
	return Filter{column: column, op: "ilike", value: pattern}
}

// Contains is a case-insensitive substring match. Wildcards in s are
// matched literally.
func Contains(column, s string) Filter {
	return ILike(column, "%"+likeEscaper.Replace(s)+"%")
}

// Or matches when any of filters matches.
func Or(filters ...Filter) Filter { return Filter{op: "or", anyOf: filters} }

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (f Filter) sql() (string, []any) {
	switch f.op {
	case "in":
		return f.column + " IN ?", []any{f.value}
	case "null":
		return f.column + " IS NULL", nil
	case "ilike":
		return "LOWER(" + f.column + ") LIKE LOWER(?) ESCAPE '!'", []any{f.value}
	case "or":
		parts := make([]string, 0, len(f.anyOf))
		var args []any
		for _, sub := range f.anyOf {
			s, a := sub.sql()
			parts = append(parts, "("+s+")")
			args = append(args, a...)
		}
		return strings.Join(parts, " OR "), args
	default:
		return f.column + " " + f.op + " ?", []any{f.value}
	}
}

// Query describes a read: filters, one-hop preloads, ordering and paging.
type Query struct {
	Filters  []Filter
	Preloads []string
	Orders   []string
	Columns  []string
	Limit    int
	Offset   int
}

func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) And(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

func (q Query) With(preloads ...string) Query {
	q.Preloads = append(append([]string(nil), q.Preloads...), preloads...)
	return q
}

func (q Query) OrderBy(orders ...string) Query {
	q.Orders = append(append([]string(nil), q.Orders...), orders...)
	return q
}

func (q Query) Only(columns ...string) Query {
	q.Columns = columns
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

func (q Query) Skip(n int) Query {
	q.Offset = n
	return q
}

// QueryClient is the storage boundary every entity operation goes
// through. Implementations must return *DataError on failure.
type QueryClient interface {
	// Select fills dest (a slice pointer) with every matching row.
	Select(ctx context.Context, dest any, q Query) error
	// First fills dest with the first matching row or fails with a
	// NotFound DataError.
	First(ctx context.Context, dest any, q Query) error
	Count(ctx context.Context, model any, q Query) (int64, error)
	// CountBy counts matching rows grouped by column, keyed by its value.
	CountBy(ctx context.Context, model any, column string, q Query) (map[int64]int64, error)
	Sum(ctx context.Context, model any, column string, q Query) (int64, error)
	Pluck(ctx context.Context, model any, column string, q Query, dest any) error
	Insert(ctx context.Context, value any) error
	// InsertIgnore inserts value unless it collides with a unique key and
	// reports whether a row was written.
	InsertIgnore(ctx context.Context, value any) (bool, error)
	// Upsert inserts value or, on a conflict over keys, overwrites columns.
	Upsert(ctx context.Context, value any, keys []string, columns []string) error
	Update(ctx context.Context, model any, q Query, values map[string]any) (int64, error)
	// Increment adds delta to column atomically in the database.
	Increment(ctx context.Context, model any, q Query, column string, delta int64) error
	Delete(ctx context.Context, model any, q Query) (int64, error)
	// Transaction runs fn against a client bound to one transaction.
	Transaction(ctx context.Context, fn func(tx QueryClient) error) error
}

type gormClient struct {
	db *gorm.DB
}

// NewClient returns a QueryClient backed by db.
func NewClient(db *gorm.DB) QueryClient {
	return &gormClient{db: db}
}

func (c *gormClient) filtered(ctx context.Context, q Query) *gorm.DB {
	tx := c.db.WithContext(ctx)
	for _, f := range q.Filters {
		s, args := f.sql()
		tx = tx.Where(s, args...)
	}
	return tx
}

func (c *gormClient) scoped(ctx context.Context, q Query) *gorm.DB {
	tx := c.filtered(ctx, q)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	for _, p := range q.Preloads {
		tx = tx.Preload(p)
	}
	for _, o := range q.Orders {
		tx = tx.Order(o)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	return tx
}

func (c *gormClient) Select(ctx context.Context, dest any, q Query) error {
	return wrap("select", c.scoped(ctx, q).Find(dest).Error)
}

func (c *gormClient) First(ctx context.Context, dest any, q Query) error {
	return wrap("first", c.scoped(ctx, q).Take(dest).Error)
}

func (c *gormClient) Count(ctx context.Context, model any, q Query) (int64, error) {
	var n int64
	err := c.filtered(ctx, q).Model(model).Count(&n).Error
	return n, wrap("count", err)
}

type groupCount struct {
	KeyID int64
	N     int64
}

func (c *gormClient) CountBy(ctx context.Context, model any, column string, q Query) (map[int64]int64, error) {
	var rows []groupCount
	err := c.filtered(ctx, q).Model(model).
		Select(column + " AS key_id, COUNT(*) AS n").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("count by "+column, err)
	}
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.KeyID] = r.N
	}
	return out, nil
}

func (c *gormClient) Sum(ctx context.Context, model any, column string, q Query) (int64, error) {
	var out struct{ Total int64 }
	err := c.filtered(ctx, q).Model(model).
		Select("COALESCE(SUM(" + column + "), 0) AS total").
		Scan(&out).Error
	return out.Total, wrap("sum "+column, err)
}

func (c *gormClient) Pluck(ctx context.Context, model any, column string, q Query, dest any) error {
	return wrap("pluck "+column, c.scoped(ctx, q).Model(model).Pluck(column, dest).Error)
}

func (c *gormClient) Insert(ctx context.Context, value any) error {
	return wrap("insert", c.db.WithContext(ctx).Create(value).Error)
}

func (c *gormClient) InsertIgnore(ctx context.Context, value any) (bool, error) {
	res := c.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, wrap("insert ignore", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *gormClient) Upsert(ctx context.Context, value any, keys []string, columns []string) error {
	conflict := make([]clause.Column, 0, len(keys))
	for _, k := range keys {
		conflict = append(conflict, clause.Column{Name: k})
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   conflict,
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(value).Error
	return wrap("upsert", err)
}

func (c *gormClient) Update(ctx context.Context, model any, q Query, values map[string]any) (int64, error) {
	res := c.filtered(ctx, q).Model(model).Updates(values)
	return res.RowsAffected, wrap("update", res.Error)
}

func (c *gormClient) Increment(ctx context.Context, model any, q Query, column string, delta int64) error {
	err := c.filtered(ctx, q).Model(model).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
	return wrap("increment "+column, err)
}

func (c *gormClient) Delete(ctx context.Context, model any, q Query) (int64, error) {
	res := c.filtered(ctx, q).Delete(model)
	return res.RowsAffected, wrap("delete", res.Error)
}

func (c *gormClient) Transaction(ctx context.Context, fn func(tx QueryClient) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormClient{db: tx})
	})
}
