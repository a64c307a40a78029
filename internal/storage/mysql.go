package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/run-o/talehopper/internal/config"
	"github.com/run-o/talehopper/internal/models"
)

// MySQLStore persists feedback submissions. Story sessions are never
// stored; the caller carries the full story state on every turn.
type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(cfg config.MySQLConfig) (*MySQLStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(&models.Feedback{}); err != nil {
		return nil, err
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveFeedback persists one feedback submission.
func (s *MySQLStore) SaveFeedback(ctx context.Context, fb *models.Feedback) error {
	return s.db.WithContext(ctx).Create(fb).Error
}

// MarkDelivered records that a feedback email went out.
func (s *MySQLStore) MarkDelivered(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("id = ?", id).
		Update("delivered", true).Error
}
