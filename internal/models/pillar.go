package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pillar is a top-level programme grouping (e.g. "Health", "Education").
type Pillar struct {
	PillarID    uuid.UUID      `gorm:"column:pillar_id;type:uuid;primaryKey" json:"pillar_id"`
	Name        string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	OrderIndex  int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	ImageURL    *string        `gorm:"column:image_url" json:"image_url"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Pillar) TableName() string {
	return "Pillars"
}

// BeforeCreate ensures pillar_id is set for DBs without default uuid.
func (p *Pillar) BeforeCreate(tx *gorm.DB) error {
	if p.PillarID == uuid.Nil {
		p.PillarID = uuid.New()
	}
	return nil
}

// PillarCategory associates a focus area (Category) with a Pillar.
// A category may belong to more than one pillar; membership is order-independent.
type PillarCategory struct {
	PillarID   uuid.UUID `gorm:"column:pillar_id;type:uuid;primaryKey" json:"pillar_id"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (PillarCategory) TableName() string {
	return "PillarCategories"
}
