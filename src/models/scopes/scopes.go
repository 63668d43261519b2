package scopes

import "gorm.io/gorm"

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// Active is the single soft-delete predicate. Every listing and membership lookup goes through it.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ActiveIn qualifies Active with a table name for joined queries.
func ActiveIn(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".is_active = ?", true)
	}
}

func OrderedStatuses(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order asc").Order("id asc")
}
