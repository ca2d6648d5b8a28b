package repository

import (
	"edureach_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// AnalyticsRepository 教师端统计用的查询
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// FindCourseEnrollments 指定课程的选课记录，带上学生信息
func (r *AnalyticsRepository) FindCourseEnrollments(courseIDs []string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	if len(courseIDs) == 0 {
		return enrollments, nil
	}
	err := r.DB.Preload("User").
		Where("course_id IN ?", courseIDs).
		Order("id ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *AnalyticsRepository) FindResultsSince(userIDs []uint, since time.Time) ([]model.QuizResult, error) {
	var results []model.QuizResult
	if len(userIDs) == 0 {
		return results, nil
	}
	err := r.DB.Where("user_id IN ? AND completed_at >= ?", userIDs, since).
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

func (r *AnalyticsRepository) FindDownloadsSince(userIDs []uint, since time.Time) ([]model.OfflineDownload, error) {
	var downloads []model.OfflineDownload
	if len(userIDs) == 0 {
		return downloads, nil
	}
	err := r.DB.Where("user_id IN ? AND completed_at >= ?", userIDs, since).
		Order("completed_at DESC").
		Find(&downloads).Error
	return downloads, err
}

func (r *AnalyticsRepository) CountQuizzes() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).Count(&count).Error
	return count, err
}
