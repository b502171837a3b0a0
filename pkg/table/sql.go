package table

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// dialect captures the two differences between the SQL backends.
type dialect struct {
	quote       func(string) string
	placeholder func(n int) string
}

var postgresDialect = dialect{
	quote:       func(s string) string { return `"` + s + `"` },
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

var mysqlDialect = dialect{
	quote:       func(s string) string { return "`" + s + "`" },
	placeholder: func(int) string { return "?" },
}

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}

// where renders filters starting at placeholder index next and returns the
// clause (without WHERE), its args and the next free placeholder index.
func (d dialect) where(filters []Filter, next int) (string, []any, int, error) {
	if len(filters) == 0 {
		return "", nil, next, nil
	}
	var parts []string
	var args []any
	for _, f := range filters {
		if err := checkIdent(f.Column); err != nil {
			return "", nil, next, err
		}
		switch f.Op {
		case OpIn:
			vals, _ := f.Value.([]any)
			if len(vals) == 0 {
				parts = append(parts, "FALSE")
				continue
			}
			phs := make([]string, len(vals))
			for i, v := range vals {
				phs[i] = d.placeholder(next)
				next++
				args = append(args, v)
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", d.quote(f.Column), strings.Join(phs, ", ")))
		default:
			parts = append(parts, fmt.Sprintf("%s = %s", d.quote(f.Column), d.placeholder(next)))
			next++
			args = append(args, f.Value)
		}
	}
	return strings.Join(parts, " AND "), args, next, nil
}

func (d dialect) selectSQL(table string, q Query) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", d.quote(table))

	cond, args, _, err := d.where(q.Filters, 1)
	if err != nil {
		return "", nil, err
	}
	if cond != "" {
		b.WriteString(" WHERE " + cond)
	}
	if len(q.Sort) > 0 {
		order := make([]string, len(q.Sort))
		for i, s := range q.Sort {
			if err := checkIdent(s.Column); err != nil {
				return "", nil, err
			}
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			order[i] = d.quote(s.Column) + " " + dir
		}
		b.WriteString(" ORDER BY " + strings.Join(order, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args, nil
}

func (d dialect) insertSQL(table string, row Row) (string, []any, error) {
	cols := sortedKeys(row)
	if err := checkIdent(append([]string{table}, cols...)...); err != nil {
		return "", nil, err
	}
	quoted := make([]string, len(cols))
	phs := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = d.quote(c)
		phs[i] = d.placeholder(i + 1)
		args[i] = row[c]
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.quote(table),
		strings.Join(quoted, ", "), strings.Join(phs, ", ")), args, nil
}

func (d dialect) updateSQL(table string, patch Row, filters []Filter) (string, []any, error) {
	cols := sortedKeys(patch)
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("empty patch")
	}
	if err := checkIdent(append([]string{table}, cols...)...); err != nil {
		return "", nil, err
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = %s", d.quote(c), d.placeholder(i+1))
		args = append(args, patch[c])
	}
	cond, wargs, _, err := d.where(filters, len(cols)+1)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("UPDATE %s SET %s", d.quote(table), strings.Join(sets, ", "))
	if cond != "" {
		sql += " WHERE " + cond
	}
	return sql, append(args, wargs...), nil
}

func (d dialect) deleteSQL(table string, filters []Filter) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	cond, args, _, err := d.where(filters, 1)
	if err != nil {
		return "", nil, err
	}
	sql := "DELETE FROM " + d.quote(table)
	if cond != "" {
		sql += " WHERE " + cond
	}
	return sql, args, nil
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
