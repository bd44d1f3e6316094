package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PlanSourceRule = "rule"
	PlanSourceAI   = "ai"
)

// NutritionPlan is an immutable snapshot of a user's daily targets. History
// is append-only; Version is per-user monotonic starting at 1, enforced by
// the (user_id, version) unique index.
type NutritionPlan struct {
	gorm.Model
	UserID        uint      `gorm:"uniqueIndex:idx_user_plan_version;not null" json:"user_id"`
	Version       int       `gorm:"uniqueIndex:idx_user_plan_version;not null" json:"version"`
	EffectiveFrom time.Time `gorm:"not null" json:"effective_from"`
	Source        string    `gorm:"size:8;not null" json:"source"` // rule | ai

	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	CalorieTarget float64 `json:"calorie_target"`
	ProteinG      float64 `json:"protein_g"`
	FatG          float64 `json:"fat_g"`
	CarbsG        float64 `json:"carbs_g"`
	FiberG        float64 `json:"fiber_g"`
	WaterL        float64 `json:"water_l"`

	// Selection inputs, kept for audit.
	Mode          string `gorm:"size:16" json:"mode"`
	Experience    string `gorm:"size:16" json:"experience"`
	ActivityLevel string `gorm:"size:16" json:"activity_level"`

	// Populated on the AI path only.
	AIModel  string `gorm:"size:64" json:"ai_model,omitempty"`
	PromptID string `gorm:"size:64" json:"prompt_id,omitempty"`
	RawJSON  string `gorm:"type:text" json:"raw_json,omitempty"`
}
