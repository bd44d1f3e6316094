package controllers

import (
	"errors"
	"strconv"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecipeController struct {
	recipes *services.RecipeService
	macros  *services.RecipeMacroService
}

func NewRecipeController(recipes *services.RecipeService, macros *services.RecipeMacroService) *RecipeController {
	return &RecipeController{recipes: recipes, macros: macros}
}

func (ct *RecipeController) Create(c *gin.Context) {
	var body struct {
		UserID          uint   `json:"user_id"`
		Title           string `json:"title"`
		Visibility      string `json:"visibility"`
		Servings        int    `json:"servings"`
		PrepTimeMinutes int    `json:"prep_time_minutes"`
		CookTimeMinutes int    `json:"cook_time_minutes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	recipe := &models.Recipe{
		UserID:          body.UserID,
		Title:           body.Title,
		Visibility:      body.Visibility,
		Servings:        body.Servings,
		PrepTimeMinutes: body.PrepTimeMinutes,
		CookTimeMinutes: body.CookTimeMinutes,
	}
	if err := ct.recipes.Create(c.Request.Context(), recipe); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, recipe)
}

func (ct *RecipeController) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	recipe, err := ct.recipes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "recipe not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, recipe)
}

func (ct *RecipeController) ListForUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	recipes, err := ct.recipes.ListByUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, recipes)
}

func (ct *RecipeController) Delete(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "user_id is required"})
		return
	}
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	if err := ct.recipes.Delete(c.Request.Context(), uint(userID), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "recipe not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.Status(204)
}

// SyncIngredients replaces the recipe's ingredient set and recomputes its
// macro totals atomically.
func (ct *RecipeController) SyncIngredients(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	var body struct {
		Rows               []services.SyncRow `json:"ingredients"`
		IgnoreUnitMismatch bool               `json:"ignore_unit_mismatch"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	recipe, err := ct.macros.SyncAndRecompute(c.Request.Context(), id, body.Rows, body.IgnoreUnitMismatch)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(404, gin.H{"error": "recipe not found"})
		case errors.Is(err, services.ErrIngredientNotFound):
			c.JSON(404, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidRow), errors.Is(err, services.ErrUnitMismatch):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(500, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(200, recipe)
}
