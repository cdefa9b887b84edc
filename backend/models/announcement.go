package models

import (
	"time"

	"gorm.io/gorm"
)

type Announcement struct {
	gorm.Model
	Title          string     `gorm:"not null" json:"title"`
	Content        string     `gorm:"not null" json:"content"`
	TargetAudience string     `gorm:"default:all;index" json:"target_audience"` // all, students, instructors
	Priority       string     `gorm:"default:medium" json:"priority"`           // low, medium, high
	IsActive       bool       `gorm:"default:true;index" json:"is_active"`
	CreatedBy      uint       `json:"created_by"`
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at"`
}
