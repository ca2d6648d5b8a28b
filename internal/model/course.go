package model

import (
	"fmt"
	"time"
)

type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonText  LessonType = "text"
	LessonQuiz  LessonType = "quiz"
)

// CourseStatus 教师课程页的三个标签：进行中、草稿、归档
type CourseStatus string

const (
	CourseActive   CourseStatus = "active"
	CourseDraft    CourseStatus = "draft"
	CourseArchived CourseStatus = "archived"
)

// ParseCourseStatus 空字符串表示不过滤
func ParseCourseStatus(s string) (CourseStatus, error) {
	switch status := CourseStatus(s); status {
	case "", CourseActive, CourseDraft, CourseArchived:
		return status, nil
	}
	return "", fmt.Errorf("unknown course status %q", s)
}

// swagger:model Course
type Course struct {
	CatalogBase
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"size:500" json:"description"`
	Category    string         `gorm:"size:100" json:"category"`
	Status      CourseStatus   `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	TeacherID   uint           `gorm:"index" json:"teacherId"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseModule struct {
	CatalogBase
	CourseID string   `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Title    string   `gorm:"size:200;not null" json:"title"`
	Position int      `gorm:"default:0" json:"position"`
	Lessons  []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// Lesson OfflineAvailable 表示允许离线缓存，并不代表已经缓存
type Lesson struct {
	CatalogBase
	ModuleID         string     `gorm:"type:varchar(36);index;not null" json:"moduleId"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Content          string     `gorm:"type:text" json:"content"`
	Type             LessonType `gorm:"type:enum('video','text','quiz');not null" json:"type"`
	OfflineAvailable bool       `gorm:"default:false" json:"offlineAvailable"`
	Position         int        `gorm:"default:0" json:"position"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// Enrollment 学生选课及进度
type Enrollment struct {
	BaseModel
	UserID        uint   `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID      string `gorm:"type:varchar(36);uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Progress      int    `gorm:"default:0" json:"progress"`
	CurrentModule string `gorm:"size:200" json:"currentModule"`
	Course        Course `gorm:"foreignKey:CourseID" json:"course"`
	User          *User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// OfflineDownload 一次完成的离线下载，用于教师端的参与度统计
type OfflineDownload struct {
	BaseModel
	UserID      uint      `gorm:"index;not null" json:"userId"`
	ContentID   string    `gorm:"type:varchar(36);index;not null" json:"contentId"`
	CompletedAt time.Time `gorm:"index" json:"completedAt"`
}

func (OfflineDownload) TableName() string {
	return "offline_downloads"
}
