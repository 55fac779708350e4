package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Country is a reference row for project locations. Code is an explicit
// ISO-3166 alpha-2 code supplied at creation and validated against the
// static table in pkg/iso (not derived from the name).
type Country struct {
	CountryID uuid.UUID      `gorm:"column:country_id;type:uuid;primaryKey" json:"country_id"`
	Name      string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Code      string         `gorm:"column:code;type:char(2);not null" json:"code"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Country) TableName() string {
	return "Countries"
}

// BeforeCreate ensures country_id is set for DBs without default uuid.
func (c *Country) BeforeCreate(tx *gorm.DB) error {
	if c.CountryID == uuid.Nil {
		c.CountryID = uuid.New()
	}
	return nil
}
