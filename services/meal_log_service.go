package services

import (
	"context"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MealLogService struct {
	db           *gorm.DB
	achievements *AchievementService
	logger       *zap.Logger
}

func NewMealLogService(db *gorm.DB, achievements *AchievementService, logger *zap.Logger) *MealLogService {
	return &MealLogService{db: db, achievements: achievements, logger: logger}
}

// Log records a meal for the given calendar day and fires the achievement
// hooks. The log write succeeds regardless of hook outcome.
func (s *MealLogService) Log(ctx context.Context, userID uint, logDate time.Time) (*models.MealLog, error) {
	ml := &models.MealLog{
		UserID:  userID,
		LogDate: startOfDay(logDate),
	}
	if err := s.db.WithContext(ctx).Create(ml).Error; err != nil {
		return nil, err
	}
	s.achievements.OnMealLogged(ctx, userID)
	return ml, nil
}

func (s *MealLogService) ListByUser(ctx context.Context, userID uint) ([]models.MealLog, error) {
	var logs []models.MealLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("log_date DESC").
		Find(&logs).Error
	return logs, err
}
