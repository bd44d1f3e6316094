package services

import (
	"context"
	"errors"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const streakUnlockDays = 7

// AchievementService unlocks badges on qualifying events. Unlocks are
// monotonic: a (user, achievement) pair is created once and never removed.
// Everything here runs as a side effect of some primary action, so errors
// are logged and swallowed by the event hooks — a failed unlock must never
// fail a recipe creation or a meal log.
type AchievementService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAchievementService(db *gorm.DB, logger *zap.Logger) *AchievementService {
	return &AchievementService{db: db, logger: logger}
}

// Unlock attaches the achievement to the user if not already present.
// Unknown codes are a no-op: the seeded catalog is authoritative and the
// engine never invents new ones. Safe to call repeatedly.
func (s *AchievementService) Unlock(ctx context.Context, userID uint, code string) error {
	var ach models.Achievement
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&ach).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	ua := models.UserAchievement{UserID: userID, AchievementID: ach.ID}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, ach.ID).
		FirstOrCreate(&ua).Error
	if err != nil {
		// A concurrent unlock may have won the insert; the unique index
		// guarantees at-most-once either way.
		var existing int64
		s.db.WithContext(ctx).Model(&models.UserAchievement{}).
			Where("user_id = ? AND achievement_id = ?", userID, ach.ID).
			Count(&existing)
		if existing > 0 {
			return nil
		}
		return err
	}
	return nil
}

func (s *AchievementService) ListForUser(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var unlocked []models.UserAchievement
	err := s.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&unlocked).Error
	return unlocked, err
}

func (s *AchievementService) Catalog(ctx context.Context) ([]models.Achievement, error) {
	var all []models.Achievement
	err := s.db.WithContext(ctx).Order("code").Find(&all).Error
	return all, err
}

// Streak counts consecutive calendar days with at least one meal log,
// ending at today or yesterday. A most-recent log older than yesterday
// earns no credit — backfilling an old log does not resurrect a streak.
func (s *AchievementService) Streak(ctx context.Context, userID uint, today time.Time) (int, error) {
	var dates []time.Time
	err := s.db.WithContext(ctx).
		Model(&models.MealLog{}).
		Distinct("log_date").
		Where("user_id = ?", userID).
		Order("log_date DESC").
		Pluck("log_date", &dates).Error
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	day := startOfDay(today)
	newest := startOfDay(dates[0])
	if !newest.Equal(day) && !newest.Equal(day.AddDate(0, 0, -1)) {
		return 0, nil
	}

	streak := 1
	prev := newest
	for _, d := range dates[1:] {
		d = startOfDay(d)
		if !d.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = d
	}
	return streak, nil
}

// EvaluateStreak unlocks the streak badge when the current streak reaches
// the threshold. Already-unlocked is a no-op.
func (s *AchievementService) EvaluateStreak(ctx context.Context, userID uint, today time.Time) error {
	streak, err := s.Streak(ctx, userID, today)
	if err != nil {
		return err
	}
	if streak >= streakUnlockDays {
		return s.Unlock(ctx, userID, models.AchievementSevenDayStreak)
	}
	return nil
}

// OnRecipeCreated unlocks "first recipe" when the user's first recipe is
// created. Errors never propagate to the recipe write.
func (s *AchievementService) OnRecipeCreated(ctx context.Context, userID uint) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		s.logger.Warn("achievement_hook_failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if count != 1 {
		return
	}
	if err := s.Unlock(ctx, userID, models.AchievementFirstRecipe); err != nil {
		s.logger.Warn("achievement_unlock_failed",
			zap.Uint("user_id", userID),
			zap.String("code", models.AchievementFirstRecipe),
			zap.Error(err),
		)
	}
}

// OnMealLogged unlocks "first meal log" on the user's first log and then
// evaluates the streak. Errors never propagate to the meal-log write.
func (s *AchievementService) OnMealLogged(ctx context.Context, userID uint) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.MealLog{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		s.logger.Warn("achievement_hook_failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if count == 1 {
		if err := s.Unlock(ctx, userID, models.AchievementFirstMealLog); err != nil {
			s.logger.Warn("achievement_unlock_failed",
				zap.Uint("user_id", userID),
				zap.String("code", models.AchievementFirstMealLog),
				zap.Error(err),
			)
		}
	}
	if err := s.EvaluateStreak(ctx, userID, time.Now()); err != nil {
		s.logger.Warn("streak_evaluation_failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
