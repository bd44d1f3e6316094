package controllers

import (
	"errors"
	"strconv"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type IngredientController struct {
	svc *services.IngredientService
}

func NewIngredientController(svc *services.IngredientService) *IngredientController {
	return &IngredientController{svc: svc}
}

func (ct *IngredientController) Create(c *gin.Context) {
	var body models.Ingredient
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := ct.svc.Create(c.Request.Context(), &body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, body)
}

func (ct *IngredientController) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	ing, err := ct.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "ingredient not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, ing)
}

func (ct *IngredientController) List(c *gin.Context) {
	ings, err := ct.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, ings)
}

// Update edits an ingredient; changes to its serving fact fan recompute
// tasks out to dependent recipes off the request path.
func (ct *IngredientController) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	var body services.IngredientUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	ing, err := ct.svc.Update(c.Request.Context(), id, body)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "ingredient not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, ing)
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
