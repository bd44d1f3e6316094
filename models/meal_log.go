package models

import (
	"time"

	"gorm.io/gorm"
)

// MealLog records that a user logged a meal on a calendar day. LogDate is
// truncated to midnight on write; only distinct dates matter for streaks.
type MealLog struct {
	gorm.Model
	UserID  uint      `gorm:"index;not null" json:"user_id"`
	LogDate time.Time `gorm:"index;not null" json:"log_date"`
}
