package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamMember is managed by the wider CMS; it appears here because pillar
// deletion is blocked while an active member still references the pillar as
// their department.
type TeamMember struct {
	MemberID  uuid.UUID      `gorm:"column:member_id;type:uuid;primaryKey" json:"member_id"`
	Fullname  string         `gorm:"column:fullname;not null" json:"fullname"`
	Role      string         `gorm:"column:role" json:"role"`
	PillarID  *uuid.UUID     `gorm:"column:pillar_id;type:uuid" json:"pillar_id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TeamMember) TableName() string {
	return "TeamMembers"
}

// BeforeCreate ensures member_id is set for DBs without default uuid.
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	return nil
}
