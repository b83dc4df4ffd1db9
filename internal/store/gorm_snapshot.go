package store

import (
	"fmt"

	"gorm.io/gorm"
)

// GormSnapshot keeps a collection as the full contents of one table.
// Every Save replaces all rows inside a single transaction.
type GormSnapshot[R any] struct {
	db *gorm.DB
}

// NewGormSnapshot migrates the table for R and returns a snapshot backed by it.
func NewGormSnapshot[R any](db *gorm.DB) (*GormSnapshot[R], error) {
	if err := db.AutoMigrate(new(R)); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
	}
	return &GormSnapshot[R]{db: db}, nil
}

// Load returns all rows ordered by id, which is also insertion order.
func (g *GormSnapshot[R]) Load() ([]R, error) {
	var records []R
	if err := g.db.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read snapshot table: %w", err)
	}
	return records, nil
}

// Save replaces the table contents with records.
func (g *GormSnapshot[R]) Save(records []R) error {
	err := g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(R)).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		rows := append([]R(nil), records...)
		return tx.CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to rewrite snapshot table: %w", err)
	}
	return nil
}
