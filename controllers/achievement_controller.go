package controllers

import (
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/services"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	svc *services.AchievementService
}

func NewAchievementController(svc *services.AchievementService) *AchievementController {
	return &AchievementController{svc: svc}
}

func (ct *AchievementController) Catalog(c *gin.Context) {
	all, err := ct.svc.Catalog(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, all)
}

func (ct *AchievementController) ListForUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	unlocked, err := ct.svc.ListForUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, unlocked)
}
