package handlers

import (
	"strings"

	"gorm.io/gorm"
)

// applySearch adds a case-insensitive substring match of ?search= over columns.
func applySearch(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	like := "%" + escapeLike(term) + "%"

	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = col + " ILIKE ?"
		args[i] = like
	}
	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderClause turns ?ordering=-score,title into an ORDER BY clause. Unknown
// fields are ignored; fallback is used when nothing usable remains.
func orderClause(raw string, allowed map[string]string, fallback string) string {
	var parts []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		col, ok := allowed[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			col += " desc"
		}
		parts = append(parts, col)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
