package controllers

import (
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/services"

	"github.com/gin-gonic/gin"
)

type MealLogController struct {
	svc *services.MealLogService
}

func NewMealLogController(svc *services.MealLogService) *MealLogController {
	return &MealLogController{svc: svc}
}

func (ct *MealLogController) Create(c *gin.Context) {
	var body struct {
		UserID  uint   `json:"user_id"`
		LogDate string `json:"log_date"` // YYYY-MM-DD, defaults to today
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	logDate := time.Now()
	if body.LogDate != "" {
		parsed, err := time.Parse("2006-01-02", body.LogDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "log_date must be YYYY-MM-DD"})
			return
		}
		logDate = parsed
	}

	ml, err := ct.svc.Log(c.Request.Context(), body.UserID, logDate)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, ml)
}

func (ct *MealLogController) ListForUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	logs, err := ct.svc.ListByUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, logs)
}
