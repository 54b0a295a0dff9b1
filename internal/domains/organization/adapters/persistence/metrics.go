// Package persistence reads the aggregates headquarters metrics are built from.
package persistence

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

// ActivityCounter counts branches and orders under a headquarters.
type ActivityCounter struct {
	db *gorm.DB
}

func NewActivityCounter(db *gorm.DB) *ActivityCounter {
	return &ActivityCounter{db: db}
}

// Counts returns how many branches the headquarters has and how many orders
// those branches placed.
func (a *ActivityCounter) Counts(ctx context.Context, headquartersID int64) (branches, orders int64, err error) {
	db := a.db.WithContext(ctx)
	if err := db.Table("branches").
		Where("headquarters_id = ?", headquartersID).
		Count(&branches).Error; err != nil {
		return 0, 0, apperrors.HandleDatabaseError(err, "Headquarters", headquartersID)
	}
	if err := db.Table("orders").
		Joins("JOIN branches ON branches.branch_id = orders.branch_id").
		Where("branches.headquarters_id = ?", headquartersID).
		Count(&orders).Error; err != nil {
		return 0, 0, apperrors.HandleDatabaseError(err, "Headquarters", headquartersID)
	}
	return branches, orders, nil
}
