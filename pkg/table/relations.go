package table

import (
	"context"
	"fmt"
)

type selector interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
}

// embed resolves rels for rows with one batched select per relation, so the
// number of round-trips does not grow with the number of parent rows.
func embed(ctx context.Context, s selector, rows []Row, rels []Relation) error {
	for _, rel := range rels {
		keys := distinct(rows, rel.LocalKey)

		var related []Row
		if len(keys) > 0 {
			var err error
			related, err = s.Select(ctx, rel.Table, Query{
				Filters:   []Filter{In(rel.foreignKey(), keys)},
				Relations: rel.Nested,
			})
			if err != nil {
				return err
			}
		}

		index := make(map[string][]Row, len(related))
		for _, r := range related {
			k := keyOf(r[rel.foreignKey()])
			index[k] = append(index[k], r)
		}

		for _, row := range rows {
			matches := index[keyOf(row[rel.LocalKey])]
			if rel.Many {
				embedded := make([]Row, len(matches))
				for i := range matches {
					embedded[i] = matches[i].Clone()
				}
				row[rel.Name] = embedded
				continue
			}
			if len(matches) > 0 {
				row[rel.Name] = matches[0].Clone()
			} else {
				row[rel.Name] = nil
			}
		}
	}
	return nil
}

func distinct(rows []Row, column string) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		k := keyOf(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func keyOf(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []byte:
		return string(vv)
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprint(v)
	}
}
