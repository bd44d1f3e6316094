package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Activity factor lookup. This map is the single source of truth for valid
// activity levels; the AI prompt text is generated from it too, so the two
// strategies cannot drift apart.
var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"high":      1.725,
	"athlete":   1.9,
}

const defaultActivityFactor = 1.55 // unknown levels fall back to moderate

var proteinPerKg = map[string]float64{
	"beginner":     1.7,
	"advanced":     1.9,
	"professional": 2.1,
}

const (
	gainCalorieFactor = 1.12
	lossCalorieFactor = 0.825
	fatPerKg          = 0.9
	fiberPer1000Kcal  = 14
	waterLitersPerKg  = 0.035
)

type PlanInput struct {
	Sex           string  `json:"sex" validate:"required,oneof=male female"`
	Age           int     `json:"age" validate:"required,gt=0"`
	HeightCm      float64 `json:"height_cm" validate:"required,gt=0"`
	WeightKg      float64 `json:"weight_kg" validate:"required,gt=0"`
	ActivityLevel string  `json:"activity_level"`
	Mode          string  `json:"mode" validate:"omitempty,oneof=maintenance gain loss"`
	Experience    string  `json:"experience" validate:"omitempty,oneof=beginner advanced professional"`
}

// PlanMetrics are the eight daily targets a plan version stores.
type PlanMetrics struct {
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	CalorieTarget float64 `json:"calorie_target"`
	ProteinG      float64 `json:"protein_g"`
	FatG          float64 `json:"fat_g"`
	CarbsG        float64 `json:"carbs_g"`
	FiberG        float64 `json:"fiber_g"`
	WaterL        float64 `json:"water_l"`
}

// ComputeRulePlan is the deterministic strategy: Mifflin-St Jeor BMR, a
// fixed activity-factor table, fixed mode multipliers, and the rounding
// rules (macros to the nearest 5 g, energy to whole kcal, water to 0.1 L).
func ComputeRulePlan(in PlanInput) PlanMetrics {
	base := 10*in.WeightKg + 6.25*in.HeightCm - 5*float64(in.Age)
	bmr := base - 161
	if in.Sex == "male" {
		bmr = base + 5
	}

	factor, ok := activityFactors[in.ActivityLevel]
	if !ok {
		factor = defaultActivityFactor
	}
	tdee := bmr * factor

	target := tdee
	switch in.Mode {
	case "gain":
		target = tdee * gainCalorieFactor
	case "loss":
		target = tdee * lossCalorieFactor
	}

	perKg, ok := proteinPerKg[in.Experience]
	if !ok {
		perKg = proteinPerKg["beginner"]
	}
	protein := in.WeightKg * perKg
	fat := in.WeightKg * fatPerKg
	carbs := math.Max(0, target-protein*4-fat*9) / 4

	calorieTarget := math.Round(target)
	return PlanMetrics{
		BMR:           math.Round(bmr),
		TDEE:          math.Round(tdee),
		CalorieTarget: calorieTarget,
		ProteinG:      roundTo5(protein),
		FatG:          roundTo5(fat),
		CarbsG:        roundTo5(carbs),
		FiberG:        math.Round(calorieTarget / 1000 * fiberPer1000Kcal),
		WaterL:        round1(in.WeightKg * waterLitersPerKg),
	}
}

type GoalPlanService struct {
	db       *gorm.DB
	ai       *NutritionAIService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewGoalPlanService(db *gorm.DB, ai *NutritionAIService, logger *zap.Logger) *GoalPlanService {
	return &GoalPlanService{db: db, ai: ai, validate: validator.New(), logger: logger}
}

// Generate computes a target set with exactly one strategy and appends it as
// the next plan version for the user. There is no automatic fallback from
// the AI strategy to the rule strategy; a failed AI call persists nothing.
func (s *GoalPlanService) Generate(ctx context.Context, userID uint, in PlanInput, source string) (*models.NutritionPlan, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := utils.ValidateProfile(in.HeightCm, in.WeightKg, in.Age); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	plan := &models.NutritionPlan{
		UserID:        userID,
		EffectiveFrom: startOfDay(time.Now()),
		Source:        source,
		Mode:          in.Mode,
		Experience:    in.Experience,
		ActivityLevel: in.ActivityLevel,
	}

	switch source {
	case models.PlanSourceRule:
		applyMetrics(plan, ComputeRulePlan(in))
	case models.PlanSourceAI:
		metrics, audit, err := s.ai.GeneratePlan(ctx, in)
		if err != nil {
			return nil, err
		}
		applyMetrics(plan, metrics)
		plan.AIModel = audit.Model
		plan.PromptID = audit.PromptID
		plan.RawJSON = audit.RawJSON
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, source)
	}

	// Version assignment and insert share one transaction; the
	// (user_id, version) unique index turns a lost race into an insert
	// error instead of a gap in the history.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&models.NutritionPlan{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}
		plan.Version = latest + 1
		return tx.Create(plan).Error
	})
	if err != nil {
		return nil, err
	}

	utils.PlanGenerated.WithLabelValues(source).Inc()
	s.logger.Info("nutrition_plan_created",
		zap.Uint("user_id", userID),
		zap.Int("version", plan.Version),
		zap.String("source", source),
	)
	return plan, nil
}

// History returns the user's plan versions, newest first. Plans are never
// updated or deleted here — only inserted by Generate.
func (s *GoalPlanService) History(ctx context.Context, userID uint) ([]models.NutritionPlan, error) {
	var plans []models.NutritionPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("version DESC").
		Find(&plans).Error
	return plans, err
}

func applyMetrics(plan *models.NutritionPlan, m PlanMetrics) {
	plan.BMR = m.BMR
	plan.TDEE = m.TDEE
	plan.CalorieTarget = m.CalorieTarget
	plan.ProteinG = m.ProteinG
	plan.FatG = m.FatG
	plan.CarbsG = m.CarbsG
	plan.FiberG = m.FiberG
	plan.WaterL = m.WaterL
}

func roundTo5(x float64) float64 {
	return 5 * math.Round(x/5)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
