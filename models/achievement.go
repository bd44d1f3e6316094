package models

import "gorm.io/gorm"

// Achievement codes known to the engine. The catalog is seed data; the
// engine looks up by code and never invents new ones.
const (
	AchievementFirstRecipe    = "first_recipe"
	AchievementFirstMealLog   = "first_meal_log"
	AchievementSevenDayStreak = "seven_day_streak"
)

type Achievement struct {
	gorm.Model
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
}

// UserAchievement is created once and never removed. The unique index makes
// the unlock at-most-once per (user, achievement) even under races.
type UserAchievement struct {
	gorm.Model
	UserID        uint `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID uint `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`

	Achievement Achievement `json:"achievement"`
}

func AchievementCatalog() []Achievement {
	return []Achievement{
		{Code: AchievementFirstRecipe, Name: "First Recipe", Description: "Created your first recipe"},
		{Code: AchievementFirstMealLog, Name: "First Meal Log", Description: "Logged your first meal"},
		{Code: AchievementSevenDayStreak, Name: "7-Day Streak", Description: "Logged meals seven days in a row"},
	}
}
