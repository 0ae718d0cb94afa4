package mysql

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds SELECT ... FOR UPDATE on dialects that support it. The
// sqlite driver used by the in-memory tests has no row locks; its single-
// writer model serializes those transactions anyway.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
