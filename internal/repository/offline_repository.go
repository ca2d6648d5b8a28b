package repository

import (
	"edureach_backend/internal/model"

	"gorm.io/gorm"
)

type OfflineRepository struct {
	DB *gorm.DB
}

func NewOfflineRepository(db *gorm.DB) *OfflineRepository {
	return &OfflineRepository{DB: db}
}

func (r *OfflineRepository) FindAllContent() ([]model.OfflineContentItem, error) {
	var items []model.OfflineContentItem
	err := r.DB.Order("id ASC").Find(&items).Error
	return items, err
}

func (r *OfflineRepository) FindContentByID(id string) (*model.OfflineContentItem, error) {
	var item model.OfflineContentItem
	if err := r.DB.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OfflineRepository) RecordDownload(download *model.OfflineDownload) error {
	return r.DB.Create(download).Error
}

// FindOfflineLessons 标记为可离线的课时，按课程、模块、课时顺序
func (r *OfflineRepository) FindOfflineLessons() ([]model.OfflineLesson, error) {
	var lessons []model.OfflineLesson
	err := r.DB.Table("lessons").
		Select("lessons.id AS lesson_id, lessons.title, lessons.type, " +
			"course_modules.title AS module_title, courses.id AS course_id, courses.title AS course_title").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Joins("JOIN courses ON courses.id = course_modules.course_id").
		Where("lessons.offline_available = ?", true).
		Order("courses.id ASC, course_modules.position ASC, lessons.position ASC").
		Scan(&lessons).Error
	return lessons, err
}
