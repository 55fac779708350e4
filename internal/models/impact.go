package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Impact is a global counter ("People Served", "Trees Planted").
// StartingValue is the immutable baseline chosen at creation; CurrentValue is
// derived: starting_value plus the sum of contribution_value over
// ProjectImpact rows whose project is not soft-deleted. All writes to
// CurrentValue go through the impacts service (ApplyContributionDelta,
// Recalculate, or the administrative override on update) — never directly.
type Impact struct {
	ImpactID      uuid.UUID      `gorm:"column:impact_id;type:uuid;primaryKey" json:"impact_id"`
	Name          string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description   string         `gorm:"column:description" json:"description"`
	Unit          string         `gorm:"column:unit" json:"unit"`
	StartingValue int64          `gorm:"column:starting_value;not null;default:0" json:"starting_value"`
	CurrentValue  int64          `gorm:"column:current_value;not null;default:0" json:"current_value"`
	Icon          string         `gorm:"column:icon" json:"icon"`
	Color         string         `gorm:"column:color" json:"color"`
	OrderIndex    int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsFeatured    bool           `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Impact) TableName() string {
	return "Impacts"
}

// BeforeCreate ensures impact_id is set for DBs without default uuid.
func (i *Impact) BeforeCreate(tx *gorm.DB) error {
	if i.ImpactID == uuid.Nil {
		i.ImpactID = uuid.New()
	}
	return nil
}

// ProjectImpact is the junction declaring a project's contribution toward an
// impact total. At most one row per (project_id, impact_id) pair.
type ProjectImpact struct {
	ProjectID         uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	ImpactID          uuid.UUID `gorm:"column:impact_id;type:uuid;primaryKey" json:"impact_id"`
	ContributionValue int64     `gorm:"column:contribution_value;not null" json:"contribution_value"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (ProjectImpact) TableName() string {
	return "ProjectImpacts"
}
