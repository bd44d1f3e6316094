package services

import (
	"context"
	"fmt"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RecipeService struct {
	db           *gorm.DB
	achievements *AchievementService
	logger       *zap.Logger
}

func NewRecipeService(db *gorm.DB, achievements *AchievementService, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, achievements: achievements, logger: logger}
}

// Create persists a recipe shell (macro totals start at zero until the
// first ingredient sync) and fires the first-recipe hook. The recipe write
// succeeds regardless of hook outcome.
func (s *RecipeService) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.Title == "" {
		return fmt.Errorf("recipe title is required")
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return err
	}
	s.achievements.OnRecipeCreated(ctx, recipe.UserID)
	return nil
}

func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) ListByUser(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	return recipes, err
}

func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	if err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recipeID, userID).
		Delete(&models.Recipe{}).Error
}
