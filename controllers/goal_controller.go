package controllers

import (
	"errors"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/services"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	plans *services.GoalPlanService
}

func NewGoalController(plans *services.GoalPlanService) *GoalController {
	return &GoalController{plans: plans}
}

// GeneratePlan computes and persists the next plan version. The strategy is
// always explicit; a failed AI call is reported, never silently replaced by
// the rule strategy.
func (ct *GoalController) GeneratePlan(c *gin.Context) {
	var body struct {
		UserID uint   `json:"user_id"`
		Source string `json:"source"`
		services.PlanInput
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if body.Source == "" {
		body.Source = models.PlanSourceRule
	}

	plan, err := ct.plans.Generate(c.Request.Context(), body.UserID, body.PlanInput, body.Source)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(400, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAIServiceUnavailable):
			c.JSON(503, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidAIOutput):
			c.JSON(502, gin.H{"error": err.Error()})
		default:
			c.JSON(500, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(201, plan)
}

func (ct *GoalController) History(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}
	plans, err := ct.plans.History(c.Request.Context(), id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, plans)
}
