package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/config"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB opens a per-test in-memory database with the full schema and the
// seeded achievement catalog.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func seedIngredient(t *testing.T, db *gorm.DB, name string, servingSize float64, unit string, cal, protein, carbs, fat float64) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{
		Name:        name,
		ServingSize: servingSize,
		ServingUnit: unit,
		Calories:    cal,
		Protein:     protein,
		Carbs:       carbs,
		Fat:         fat,
	}
	require.NoError(t, db.Create(&ing).Error)
	return ing
}

func seedRecipe(t *testing.T, db *gorm.DB, userID uint, title string) models.Recipe {
	t.Helper()
	recipe := models.Recipe{UserID: userID, Title: title, Servings: 2}
	require.NoError(t, db.Create(&recipe).Error)
	return recipe
}
