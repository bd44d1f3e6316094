package services

import (
	"context"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/queue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecomputePropagator subscribes to IngredientChanged and enqueues one
// recompute task per recipe currently referencing the ingredient. Duplicate
// enqueues are harmless: recompute is idempotent and reads current state.
type RecomputePropagator struct {
	db     *gorm.DB
	queue  queue.Queue
	logger *zap.Logger
}

func NewRecomputePropagator(db *gorm.DB, q queue.Queue, logger *zap.Logger) *RecomputePropagator {
	return &RecomputePropagator{db: db, queue: q, logger: logger}
}

func (p *RecomputePropagator) OnIngredientChanged(evt IngredientChanged) {
	ctx := context.Background()

	var recipeIDs []uint
	err := p.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Distinct("recipe_id").
		Where("ingredient_id = ?", evt.IngredientID).
		Pluck("recipe_id", &recipeIDs).Error
	if err != nil {
		p.logger.Error("recompute_fanout_query_failed",
			zap.Uint("ingredient_id", evt.IngredientID),
			zap.Error(err),
		)
		return
	}

	for _, id := range recipeIDs {
		if err := p.queue.Enqueue(ctx, id); err != nil {
			// Dropped tasks are recovered by the next edit of the same
			// ingredient; the write itself already committed.
			p.logger.Warn("recompute_enqueue_failed",
				zap.Uint("recipe_id", id),
				zap.Error(err),
			)
		}
	}
	p.logger.Info("recompute_fanout",
		zap.Uint("ingredient_id", evt.IngredientID),
		zap.Int("recipes", len(recipeIDs)),
	)
}
