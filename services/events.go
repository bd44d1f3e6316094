package services

import (
	"sync"

	"go.uber.org/zap"
)

// IngredientChanged is published after an ingredient write commits with at
// least one nutrition-relevant field changed (serving size/unit or a macro).
// Renames and verification flips do not publish.
type IngredientChanged struct {
	IngredientID uint
}

type IngredientChangedHandler func(evt IngredientChanged)

// EventBus fans domain events out to subscribers registered at process
// start. Handlers run on their own goroutines so the publishing write path
// never waits on them; a panicking handler is contained and logged.
type EventBus struct {
	mu                sync.RWMutex
	ingredientChanged []IngredientChangedHandler
	logger            *zap.Logger
}

func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{logger: logger}
}

func (b *EventBus) SubscribeIngredientChanged(h IngredientChangedHandler) {
	b.mu.Lock()
	b.ingredientChanged = append(b.ingredientChanged, h)
	b.mu.Unlock()
}

func (b *EventBus) PublishIngredientChanged(evt IngredientChanged) {
	b.mu.RLock()
	handlers := make([]IngredientChangedHandler, len(b.ingredientChanged))
	copy(handlers, b.ingredientChanged)
	b.mu.RUnlock()

	for _, h := range handlers {
		go func(h IngredientChangedHandler) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event_handler_panicked",
						zap.Uint("ingredient_id", evt.IngredientID),
						zap.Any("panic", r),
					)
				}
			}()
			h(evt)
		}(h)
	}
}
