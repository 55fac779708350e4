package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a focus area offered under one or more pillars. Projects keep a
// legacy single category_id reference alongside the ProjectFocusArea join.
// Name uniqueness is case-insensitive and enforced in the service layer
// ("Climate" and "climate" collide).
type Category struct {
	CategoryID uuid.UUID      `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	Name       string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "Categories"
}

// BeforeCreate ensures category_id is set for DBs without default uuid.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.CategoryID == uuid.Nil {
		c.CategoryID = uuid.New()
	}
	return nil
}
