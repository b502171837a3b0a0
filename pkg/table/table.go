// Package table is the table-style data API the endpoints aggregate over:
// select/insert/update/delete against named tables, with nested relations
// joined by the backend. Backends: Postgres (pgx), MySQL (gorm) and memory.
package table

import (
	"context"
	"fmt"
)

// Row is one record keyed by column name. Embedded relations appear under
// their relation name.
type Row map[string]any

// Clone returns a shallow copy; embedded rows are cloned too.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		switch vv := v.(type) {
		case Row:
			out[k] = vv.Clone()
		case []Row:
			rows := make([]Row, len(vv))
			for i := range vv {
				rows[i] = vv[i].Clone()
			}
			out[k] = rows
		default:
			out[k] = v
		}
	}
	return out
}

type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

func In(column string, values []string) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Column: column, Op: OpIn, Value: vs}
}

type Sort struct {
	Column string
	Desc   bool
}

// Relation declares a join resolved by the backend: for each parent row the
// related rows whose ForeignKey equals the parent's LocalKey are embedded
// under Name. Many-to-one relations embed a single Row (or nil), one-to-many
// relations embed []Row.
type Relation struct {
	Name       string
	Table      string
	LocalKey   string
	ForeignKey string // defaults to "id"
	Many       bool
	Nested     []Relation
}

func (r Relation) foreignKey() string {
	if r.ForeignKey == "" {
		return "id"
	}
	return r.ForeignKey
}

type Query struct {
	Filters   []Filter
	Sort      []Sort
	Limit     int
	Relations []Relation
}

// API is the table data collaborator. Every method is attempted exactly once
// and fails with *Error.
type API interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) ([]Row, error)
	Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error)
	Delete(ctx context.Context, table string, filters ...Filter) ([]Row, error)
	Ping(ctx context.Context) error
	Close() error
}

// Error carries the backend message as text; there is no structured code.
type Error struct {
	Op      string
	Table   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Message)
}

func newError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if te, ok := err.(*Error); ok {
		return te
	}
	return &Error{Op: op, Table: table, Message: err.Error()}
}
