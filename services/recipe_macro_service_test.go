package services

import (
	"context"
	"testing"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestSyncAndRecomputeTotals(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	milk := seedIngredient(t, db, "milk", 100, models.UnitMilliliter, 42, 3.4, 5, 1)
	recipe := seedRecipe(t, db, 1, "overnight oats")

	got, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 50, Unit: models.UnitGram},
		{IngredientID: milk.ID, Quantity: 200, Unit: models.UnitMilliliter},
	}, false)
	require.NoError(t, err)

	// oats at half a serving plus milk at two servings.
	assert.InDelta(t, 278.5, got.Calories, 0.01)
	assert.InDelta(t, 15.25, got.Protein, 0.01)
	assert.InDelta(t, 43.15, got.Carbs, 0.01)
	assert.InDelta(t, 5.45, got.Fat, 0.01)
	assert.Len(t, got.Ingredients, 2)
}

func TestSyncAndRecomputeIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	recipe := seedRecipe(t, db, 1, "porridge")
	rows := []SyncRow{{IngredientID: oats.ID, Quantity: 80, Unit: models.UnitGram}}

	first, err := svc.SyncAndRecompute(context.Background(), recipe.ID, rows, false)
	require.NoError(t, err)
	second, err := svc.SyncAndRecompute(context.Background(), recipe.ID, rows, false)
	require.NoError(t, err)

	assert.Equal(t, first.Calories, second.Calories)
	assert.Equal(t, first.Protein, second.Protein)
	assert.Len(t, second.Ingredients, 1)

	var count int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncUnitMismatchAbortsWithoutWrites(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	milk := seedIngredient(t, db, "milk", 100, models.UnitMilliliter, 42, 3.4, 5, 1)
	recipe := seedRecipe(t, db, 1, "porridge")

	before, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 80, Unit: models.UnitGram},
	}, false)
	require.NoError(t, err)

	_, err = svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 40, Unit: models.UnitGram},
		{IngredientID: milk.ID, Quantity: 200, Unit: models.UnitGram}, // milk serves in ml
	}, false)
	require.ErrorIs(t, err, ErrUnitMismatch)

	// The failed sync must not have touched the recipe at all.
	var after models.Recipe
	require.NoError(t, db.Preload("Ingredients").First(&after, recipe.ID).Error)
	assert.Equal(t, before.Calories, after.Calories)
	require.Len(t, after.Ingredients, 1)
	assert.Equal(t, 80.0, after.Ingredients[0].Quantity)
}

func TestSyncIgnoreUnitMismatchSkipsRow(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	milk := seedIngredient(t, db, "milk", 100, models.UnitMilliliter, 42, 3.4, 5, 1)
	recipe := seedRecipe(t, db, 1, "porridge")

	got, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 100, Unit: models.UnitGram},
		{IngredientID: milk.ID, Quantity: 200, Unit: models.UnitGram},
	}, true)
	require.NoError(t, err)

	assert.Len(t, got.Ingredients, 1)
	assert.InDelta(t, 389, got.Calories, 0.01)
}

func TestSyncInvalidRows(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	recipe := seedRecipe(t, db, 1, "porridge")

	cases := map[string]SyncRow{
		"zero quantity":     {IngredientID: oats.ID, Quantity: 0, Unit: models.UnitGram},
		"negative quantity": {IngredientID: oats.ID, Quantity: -5, Unit: models.UnitGram},
		"zero ingredient":   {IngredientID: 0, Quantity: 10, Unit: models.UnitGram},
		"missing unit":      {IngredientID: oats.ID, Quantity: 10},
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{row}, false)
			assert.ErrorIs(t, err, ErrInvalidRow)
		})
	}
}

func TestSyncUnknownIngredient(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())
	recipe := seedRecipe(t, db, 1, "porridge")

	_, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: 9999, Quantity: 10, Unit: models.UnitGram},
	}, false)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestSyncUnknownRecipe(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	_, err := svc.SyncAndRecompute(context.Background(), 9999, nil, false)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSyncDuplicateRowsLastWins(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	recipe := seedRecipe(t, db, 1, "porridge")

	got, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 50, Unit: models.UnitGram},
		{IngredientID: oats.ID, Quantity: 100, Unit: models.UnitGram},
	}, false)
	require.NoError(t, err)

	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 100.0, got.Ingredients[0].Quantity)
	assert.InDelta(t, 389, got.Calories, 0.01)
}

func TestSyncRemovesAbsentRows(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	milk := seedIngredient(t, db, "milk", 100, models.UnitMilliliter, 42, 3.4, 5, 1)
	recipe := seedRecipe(t, db, 1, "porridge")

	_, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 100, Unit: models.UnitGram},
		{IngredientID: milk.ID, Quantity: 100, Unit: models.UnitMilliliter},
	}, false)
	require.NoError(t, err)

	got, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 100, Unit: models.UnitGram},
	}, false)
	require.NoError(t, err)

	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, oats.ID, got.Ingredients[0].IngredientID)
	assert.InDelta(t, 389, got.Calories, 0.01)
}

func TestRecomputePicksUpIngredientEdits(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	recipe := seedRecipe(t, db, 1, "porridge")

	_, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 100, Unit: models.UnitGram},
	}, false)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Ingredient{}).
		Where("id = ?", oats.ID).Update("calories", 400).Error)
	require.NoError(t, svc.Recompute(context.Background(), recipe.ID))

	var got models.Recipe
	require.NoError(t, db.First(&got, recipe.ID).Error)
	assert.InDelta(t, 400, got.Calories, 0.01)
}

func TestRecomputeMissingRecipeIsNoop(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())
	assert.NoError(t, svc.Recompute(context.Background(), 9999))
}

func TestRecomputeDeletedIngredientFails(t *testing.T) {
	db := testDB(t)
	svc := NewRecipeMacroService(db, zap.NewNop())

	oats := seedIngredient(t, db, "oats", 100, models.UnitGram, 389, 16.9, 66.3, 6.9)
	recipe := seedRecipe(t, db, 1, "porridge")

	_, err := svc.SyncAndRecompute(context.Background(), recipe.ID, []SyncRow{
		{IngredientID: oats.ID, Quantity: 100, Unit: models.UnitGram},
	}, false)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Ingredient{}, oats.ID).Error)
	err = svc.Recompute(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}
