package service

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

type CourseRepo interface {
	FindAll() ([]model.Course, error)
	FindByID(id string) (*model.Course, error)
	FindByTeacher(teacherID uint) ([]model.Course, error)
	CountStudents(courseIDs []string) (map[string]int64, error)
	FindEnrollments(userID uint) ([]model.Enrollment, error)
}

type CourseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Modules     int    `json:"modules"`
	Lessons     int    `json:"lessons"`
}

type TeacherCourse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      model.CourseStatus `json:"status"`
	Students    int64              `json:"students"`
}

type CourseProgress struct {
	CourseID      string `json:"courseId"`
	Title         string `json:"title"`
	Progress      int    `json:"progress"`
	CurrentModule string `json:"currentModule"`
	Completed     bool   `json:"completed"`
}

type QuizScore struct {
	QuizID      string    `json:"quizId"`
	Title       string    `json:"title"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressReport 学习进度页
type ProgressReport struct {
	Courses         []CourseProgress `json:"courses"`
	Quizzes         []QuizScore      `json:"quizzes"`
	OverallProgress int              `json:"overallProgress"`
	AverageScore    int              `json:"averageScore"`
}

type CourseService struct {
	Repo    CourseRepo
	Quizzes QuizRepo
}

func NewCourseService(repo CourseRepo, quizzes QuizRepo) *CourseService {
	return &CourseService{Repo: repo, Quizzes: quizzes}
}

func (s *CourseService) ListCourses() ([]CourseSummary, error) {
	courses, err := s.Repo.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		summary := CourseSummary{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Category:    c.Category,
			Modules:     len(c.Modules),
		}
		for _, m := range c.Modules {
			summary.Lessons += len(m.Lessons)
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *CourseService) GetCourse(id string) (*model.Course, error) {
	course, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrCourseNotFound, id)
		}
		return nil, err
	}
	return course, nil
}

// TeacherCourses status 为空时返回全部课程
func (s *CourseService) TeacherCourses(teacherID uint, status model.CourseStatus) ([]TeacherCourse, error) {
	all, err := s.Repo.FindByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	courses := make([]model.Course, 0, len(all))
	for _, c := range all {
		if status == "" || c.Status == status {
			courses = append(courses, c)
		}
	}

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	counts, err := s.Repo.CountStudents(ids)
	if err != nil {
		return nil, err
	}

	out := make([]TeacherCourse, 0, len(courses))
	for _, c := range courses {
		out = append(out, TeacherCourse{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Status:      c.Status,
			Students:    counts[c.ID],
		})
	}
	return out, nil
}

// Progress 选课进度加上已完成测验的成绩，平均分四舍五入
func (s *CourseService) Progress(userID uint) (*ProgressReport, error) {
	enrollments, err := s.Repo.FindEnrollments(userID)
	if err != nil {
		return nil, err
	}
	results, err := s.Quizzes.ListResultsByUser(userID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.Quizzes.FindAll()
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(quizzes))
	for _, q := range quizzes {
		titles[q.ID] = q.Title
	}

	report := &ProgressReport{
		Courses: make([]CourseProgress, 0, len(enrollments)),
		Quizzes: make([]QuizScore, 0, len(results)),
	}

	total := 0
	for _, e := range enrollments {
		report.Courses = append(report.Courses, CourseProgress{
			CourseID:      e.CourseID,
			Title:         e.Course.Title,
			Progress:      e.Progress,
			CurrentModule: e.CurrentModule,
			Completed:     e.Progress >= 100,
		})
		total += e.Progress
	}
	if len(enrollments) > 0 {
		report.OverallProgress = int(math.Round(float64(total) / float64(len(enrollments))))
	}

	scoreSum := 0
	for _, r := range results {
		report.Quizzes = append(report.Quizzes, QuizScore{
			QuizID:      r.QuizID,
			Title:       titles[r.QuizID],
			Score:       r.Score,
			CompletedAt: r.CompletedAt,
		})
		scoreSum += r.Score
	}
	if len(results) > 0 {
		report.AverageScore = int(math.Round(float64(scoreSum) / float64(len(results))))
	}
	return report, nil
}
