package database

import (
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

// anyEnumCondition matches rows whose JSON enum list column holds at least
// one of values. The ORs are grouped so they compose with other Where calls.
func anyEnumCondition[T ~string](db *gorm.DB, column string, values []T) *gorm.DB {
	cond := db.Session(&gorm.Session{NewDB: true})
	for i, v := range values {
		if i == 0 {
			cond = cond.Where(column+" LIKE ?", models.LikePattern(v))
			continue
		}
		cond = cond.Or(column+" LIKE ?", models.LikePattern(v))
	}
	return cond
}
