package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AIConfig is passed into the AI plan generator at construction. Credentials
// are never read from ambient process state inside the service, so tests can
// inject a fake endpoint.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type QueueConfig struct {
	Workers    int
	MaxRetries int
	RedisAddr  string // empty = in-process queue
}

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	AI    AIConfig
	Queue QueueConfig
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "mealsfit_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AI: AIConfig{
			APIKey:  os.Getenv("AI_API_KEY"),
			BaseURL: os.Getenv("AI_BASE_URL"),
			Model:   os.Getenv("AI_MODEL"),
		},
		Queue: QueueConfig{
			Workers:    getEnvInt("RECOMPUTE_WORKERS", 4),
			MaxRetries: getEnvInt("RECOMPUTE_MAX_RETRIES", 3),
			RedisAddr:  os.Getenv("REDIS_ADDR"),
		},
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema and seeds the achievement catalog. Exported so
// tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.NutritionPlan{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.MealLog{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return SeedAchievements(db)
}

func SeedAchievements(db *gorm.DB) error {
	for _, a := range models.AchievementCatalog() {
		seed := a
		if err := db.Where("code = ?", seed.Code).
			Attrs(models.Achievement{Name: seed.Name, Description: seed.Description}).
			FirstOrCreate(&seed).Error; err != nil {
			return fmt.Errorf("seeding achievement %s: %w", a.Code, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
