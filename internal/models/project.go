package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project status values. Transitions are unrestricted; status never affects
// impact totals (only soft deletion does).
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusCompleted = "completed"
	ProjectStatusOnHold    = "on_hold"
)

// ValidProjectStatus reports whether s is one of the known status values.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusOngoing, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

// Project belongs to exactly one pillar and at least one focus area.
// CategoryID holds the first selected focus area for old clients; the full
// selection lives in ProjectFocusArea rows ordered by position.
// IsHidden controls public visibility only — a hidden project still counts
// toward impact totals (see projects.HiddenProjectsStillContribute).
type Project struct {
	ProjectID        uuid.UUID      `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	ShortDescription string         `gorm:"column:short_description" json:"short_description"`
	Description      string         `gorm:"column:description;not null" json:"description"`
	Location         string         `gorm:"column:location" json:"location"`
	StartDate        *time.Time     `gorm:"column:start_date" json:"start_date"`
	EndDate          *time.Time     `gorm:"column:end_date" json:"end_date"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;default:'planning'" json:"status"`
	OrderIndex       int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	IsFeatured       bool           `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	IsHidden         bool           `gorm:"column:is_hidden;not null;default:false" json:"is_hidden"`
	PillarID         uuid.UUID      `gorm:"column:pillar_id;type:uuid;not null" json:"pillar_id"`
	CategoryID       uuid.UUID      `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	CountryID        *uuid.UUID     `gorm:"column:country_id;type:uuid" json:"country_id"`
	SdgGoals         datatypes.JSON `gorm:"column:sdg_goals;type:json" json:"sdg_goals"`
	Testimonials     datatypes.JSON `gorm:"column:testimonials;type:json" json:"testimonials"`
	Gallery          datatypes.JSON `gorm:"column:gallery;type:json" json:"gallery"`
	FeaturedImageURL *string        `gorm:"column:featured_image_url" json:"featured_image_url"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string {
	return "Projects"
}

// BeforeCreate ensures project_id is set for DBs without default uuid.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}

// Testimonial is a quote attached to a project. No identity beyond its
// position in the list; stored in the Testimonials JSON column.
type Testimonial struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Position string `json:"position"`
}

// ProjectFocusArea keeps the full multi-select of focus areas per project.
// Position 0 is the legacy category_id view exposed to old clients.
type ProjectFocusArea struct {
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	Position   int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ProjectFocusArea) TableName() string {
	return "ProjectFocusAreas"
}
