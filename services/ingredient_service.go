package services

import (
	"context"
	"fmt"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IngredientService struct {
	db     *gorm.DB
	bus    *EventBus
	logger *zap.Logger
}

func NewIngredientService(db *gorm.DB, bus *EventBus, logger *zap.Logger) *IngredientService {
	return &IngredientService{db: db, bus: bus, logger: logger}
}

func (s *IngredientService) Create(ctx context.Context, ing *models.Ingredient) error {
	if err := validateIngredient(ing); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(ing).Error
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *IngredientService) List(ctx context.Context) ([]models.Ingredient, error) {
	var ings []models.Ingredient
	err := s.db.WithContext(ctx).Order("name").Find(&ings).Error
	return ings, err
}

// IngredientUpdate carries a partial edit; nil fields are left untouched.
type IngredientUpdate struct {
	Name        *string  `json:"name"`
	ServingSize *float64 `json:"serving_size"`
	ServingUnit *string  `json:"serving_unit"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fat         *float64 `json:"fat"`
	IsVerified  *bool    `json:"is_verified"`
}

// Update persists the edit and, when a nutrition-relevant field actually
// changed, publishes IngredientChanged after the write commits. The publish
// is fire-and-forget; recompute of dependent recipes happens off this path.
func (s *IngredientService) Update(ctx context.Context, id uint, upd IngredientUpdate) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}

	before := ing
	if upd.Name != nil {
		ing.Name = *upd.Name
	}
	if upd.ServingSize != nil {
		ing.ServingSize = *upd.ServingSize
	}
	if upd.ServingUnit != nil {
		ing.ServingUnit = *upd.ServingUnit
	}
	if upd.Calories != nil {
		ing.Calories = *upd.Calories
	}
	if upd.Protein != nil {
		ing.Protein = *upd.Protein
	}
	if upd.Carbs != nil {
		ing.Carbs = *upd.Carbs
	}
	if upd.Fat != nil {
		ing.Fat = *upd.Fat
	}
	if upd.IsVerified != nil {
		ing.IsVerified = *upd.IsVerified
	}

	if err := validateIngredient(&ing); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&ing).Error; err != nil {
		return nil, err
	}

	if nutritionChanged(before, ing) {
		s.logger.Info("ingredient_nutrition_changed", zap.Uint("ingredient_id", ing.ID))
		s.bus.PublishIngredientChanged(IngredientChanged{IngredientID: ing.ID})
	}
	return &ing, nil
}

func nutritionChanged(before, after models.Ingredient) bool {
	return before.ServingSize != after.ServingSize ||
		before.ServingUnit != after.ServingUnit ||
		before.Calories != after.Calories ||
		before.Protein != after.Protein ||
		before.Carbs != after.Carbs ||
		before.Fat != after.Fat
}

func validateIngredient(ing *models.Ingredient) error {
	if ing.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if ing.ServingSize <= 0 {
		return fmt.Errorf("serving size must be positive")
	}
	if !models.ValidServingUnit(ing.ServingUnit) {
		return fmt.Errorf("unknown serving unit %q", ing.ServingUnit)
	}
	if ing.Calories < 0 || ing.Protein < 0 || ing.Carbs < 0 || ing.Fat < 0 {
		return fmt.Errorf("macros must not be negative")
	}
	return nil
}
