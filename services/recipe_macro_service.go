package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncRow is one requested recipe-ingredient association. Quantity is in the
// row's Unit, which must equal the ingredient's serving unit.
type SyncRow struct {
	IngredientID uint    `json:"ingredient_id" validate:"required,gt=0"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
	Unit         string  `json:"unit" validate:"required"`
	Notes        string  `json:"notes"`
}

type RecipeMacroService struct {
	db       *gorm.DB
	validate *validator.Validate
	logger   *zap.Logger
}

func NewRecipeMacroService(db *gorm.DB, logger *zap.Logger) *RecipeMacroService {
	return &RecipeMacroService{db: db, validate: validator.New(), logger: logger}
}

type validatedRow struct {
	row        SyncRow
	ingredient models.Ingredient
}

// SyncAndRecompute replaces a recipe's ingredient set wholesale with the
// validated rows and recomputes the macro totals, both inside one
// transaction, so readers never observe associations that disagree with the
// stored totals.
//
// Every row is validated before anything is written: a bad row aborts the
// whole operation with the recipe untouched. A row whose unit disagrees with
// the ingredient's serving unit is skipped when ignoreUnitMismatch is set
// and aborts otherwise. Later duplicate rows for the same ingredient
// overwrite earlier ones.
func (s *RecipeMacroService) SyncAndRecompute(ctx context.Context, recipeID uint, rows []SyncRow, ignoreUnitMismatch bool) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, err
	}

	replaceSet := make(map[uint]validatedRow, len(rows))
	for i, row := range rows {
		if err := s.validate.Struct(row); err != nil {
			return nil, fmt.Errorf("row %d: %w: %v", i, ErrInvalidRow, err)
		}
		var ing models.Ingredient
		if err := s.db.WithContext(ctx).First(&ing, row.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("row %d: ingredient %d: %w", i, row.IngredientID, ErrIngredientNotFound)
			}
			return nil, err
		}
		if ing.ServingSize <= 0 {
			return nil, fmt.Errorf("row %d: ingredient %d has a non-positive serving size", i, row.IngredientID)
		}
		if row.Unit != ing.ServingUnit {
			if ignoreUnitMismatch {
				continue
			}
			return nil, fmt.Errorf("row %d: got %q, ingredient serves %q: %w", i, row.Unit, ing.ServingUnit, ErrUnitMismatch)
		}
		replaceSet[row.IngredientID] = validatedRow{row: row, ingredient: ing}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []models.RecipeIngredient
		if err := tx.Where("recipe_id = ?", recipe.ID).Find(&current).Error; err != nil {
			return err
		}
		currentByIngredient := make(map[uint]models.RecipeIngredient, len(current))
		for _, ri := range current {
			currentByIngredient[ri.IngredientID] = ri
		}

		// Three-way diff against the validated set, applied in
		// deterministic order: removed first, then upserts.
		var removed []uint
		for ingredientID := range currentByIngredient {
			if _, ok := replaceSet[ingredientID]; !ok {
				removed = append(removed, ingredientID)
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("recipe_id = ? AND ingredient_id IN ?", recipe.ID, removed).
				Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
		}

		for _, ingredientID := range sortedKeys(replaceSet) {
			vr := replaceSet[ingredientID]
			if existing, ok := currentByIngredient[ingredientID]; ok {
				existing.Quantity = vr.row.Quantity
				existing.Unit = vr.row.Unit
				existing.Notes = vr.row.Notes
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			} else {
				ri := models.RecipeIngredient{
					RecipeID:     recipe.ID,
					IngredientID: ingredientID,
					Quantity:     vr.row.Quantity,
					Unit:         vr.row.Unit,
					Notes:        vr.row.Notes,
				}
				if err := tx.Create(&ri).Error; err != nil {
					return err
				}
			}
		}

		var calories, protein, carbs, fat float64
		for _, vr := range replaceSet {
			factor := vr.row.Quantity / vr.ingredient.ServingSize
			calories += vr.ingredient.Calories * factor
			protein += vr.ingredient.Protein * factor
			carbs += vr.ingredient.Carbs * factor
			fat += vr.ingredient.Fat * factor
		}
		return tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"calories": round2(calories),
			"protein":  round2(protein),
			"carbs":    round2(carbs),
			"fat":      round2(fat),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	var updated models.Recipe
	if err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		First(&updated, recipe.ID).Error; err != nil {
		return nil, err
	}
	s.logger.Info("recipe_synced",
		zap.Uint("recipe_id", updated.ID),
		zap.Int("ingredients", len(updated.Ingredients)),
		zap.Float64("calories", updated.Calories),
	)
	return &updated, nil
}

// Recompute re-derives the macro totals from the recipe's current
// associations and the referenced ingredients' current facts. It is a pure
// function of persisted state, so it is safe to run twice, late, or out of
// order — the queue worker relies on that.
func (s *RecipeMacroService) Recompute(ctx context.Context, recipeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Recipe deleted since the task was enqueued.
				return nil
			}
			return err
		}

		var assocs []models.RecipeIngredient
		if err := tx.Preload("Ingredient").
			Where("recipe_id = ?", recipeID).
			Find(&assocs).Error; err != nil {
			return err
		}

		var calories, protein, carbs, fat float64
		for _, a := range assocs {
			if a.Ingredient.ID == 0 {
				return fmt.Errorf("recipe %d: ingredient %d: %w", recipeID, a.IngredientID, ErrIngredientNotFound)
			}
			if a.Ingredient.ServingSize <= 0 {
				return fmt.Errorf("recipe %d: ingredient %d has a non-positive serving size", recipeID, a.IngredientID)
			}
			factor := a.Quantity / a.Ingredient.ServingSize
			calories += a.Ingredient.Calories * factor
			protein += a.Ingredient.Protein * factor
			carbs += a.Ingredient.Carbs * factor
			fat += a.Ingredient.Fat * factor
		}

		return tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(map[string]interface{}{
			"calories": round2(calories),
			"protein":  round2(protein),
			"carbs":    round2(carbs),
			"fat":      round2(fat),
		}).Error
	})
}

func sortedKeys(m map[uint]validatedRow) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
