package database

import (
	"edureach_backend/internal/config"
	"edureach_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, skipSeed bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizResult{},
		&model.OfflineContentItem{},
		&model.OfflineDownload{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if skipSeed {
		return db, nil
	}
	if err := Seed(db); err != nil {
		return nil, fmt.Errorf("seed sample data: %w", err)
	}
	return db, nil
}
