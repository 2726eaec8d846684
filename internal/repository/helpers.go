package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Page is a limit/offset window with the total row count of the filtered set.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// likePattern escapes LIKE wildcards in user input and wraps it for a contains match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

// listContains matches one element of a comma separated column.
func listContains(db *gorm.DB, column, value string) *gorm.DB {
	return db.Where("(',' || LOWER("+column+") || ',') LIKE ?", "%,"+strings.ToLower(strings.TrimSpace(value))+",%")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
