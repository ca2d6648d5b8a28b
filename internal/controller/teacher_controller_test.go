package controller

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryCourseRepo 同时充当课程与统计数据源
type memoryCourseRepo struct {
	courses     []model.Course
	enrollments []model.Enrollment
	results     []model.QuizResult
}

func (r *memoryCourseRepo) FindAll() ([]model.Course, error) {
	return r.courses, nil
}

func (r *memoryCourseRepo) FindByID(id string) (*model.Course, error) {
	for i := range r.courses {
		if r.courses[i].ID == id {
			return &r.courses[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryCourseRepo) FindByTeacher(teacherID uint) ([]model.Course, error) {
	var out []model.Course
	for _, c := range r.courses {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCourseRepo) CountStudents(courseIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, e := range r.enrollments {
		counts[e.CourseID]++
	}
	return counts, nil
}

func (r *memoryCourseRepo) FindEnrollments(userID uint) ([]model.Enrollment, error) {
	return nil, nil
}

func (r *memoryCourseRepo) FindCourseEnrollments(courseIDs []string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range r.enrollments {
		for _, id := range courseIDs {
			if e.CourseID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (r *memoryCourseRepo) FindResultsSince(userIDs []uint, since time.Time) ([]model.QuizResult, error) {
	var out []model.QuizResult
	for _, res := range r.results {
		if !res.CompletedAt.Before(since) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memoryCourseRepo) FindDownloadsSince(userIDs []uint, since time.Time) ([]model.OfflineDownload, error) {
	return nil, nil
}

func (r *memoryCourseRepo) CountQuizzes() (int64, error) {
	return 1, nil
}

func newTeacherRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := &memoryCourseRepo{
		courses: []model.Course{
			{CatalogBase: model.CatalogBase{ID: "1"}, Title: "Algebra", TeacherID: 2, Status: model.CourseActive},
			{CatalogBase: model.CatalogBase{ID: "4"}, Title: "Chemistry", TeacherID: 2, Status: model.CourseDraft},
		},
		enrollments: []model.Enrollment{
			{UserID: 1, CourseID: "1", Progress: 50, User: &model.User{Name: "Student User"}},
		},
		results: []model.QuizResult{
			{UserID: 1, QuizID: "1", Score: 80, CompletedAt: time.Now().Add(-time.Hour)},
		},
	}
	courses := NewCourseController(service.NewCourseService(repo, &memoryQuizRepo{}))
	analytics := NewAnalyticsController(service.NewAnalyticsService(repo, repo))

	r := gin.New()
	api := r.Group("/api/teacher", func(c *gin.Context) {
		c.Set(util.ContextSessionKey, &model.Session{ID: "s2", UserID: 2, Role: model.Teacher})
		c.Next()
	})
	api.GET("/courses", courses.TeacherCourses)
	api.GET("/analytics", analytics.TeacherAnalytics)
	return r
}

func TestTeacherCourses_StatusFilter(t *testing.T) {
	r := newTeacherRouter()

	code, env := doRequest(t, r, http.MethodGet, "/api/teacher/courses", nil)
	require.Equal(t, http.StatusOK, code)
	var courses []service.TeacherCourse
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	assert.Len(t, courses, 2)

	code, env = doRequest(t, r, http.MethodGet, "/api/teacher/courses?status=draft", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, model.CourseDraft, courses[0].Status)

	code, _ = doRequest(t, r, http.MethodGet, "/api/teacher/courses?status=deleted", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTeacherAnalytics_Endpoint(t *testing.T) {
	r := newTeacherRouter()

	code, env := doRequest(t, r, http.MethodGet, "/api/teacher/analytics?timeframe=week", nil)
	require.Equal(t, http.StatusOK, code)
	var report service.TeacherAnalytics
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "week", report.Timeframe)
	assert.Equal(t, 1, report.Overview.TotalStudents)
	assert.Equal(t, 80, report.Overview.AverageScore)
	assert.Equal(t, 100, report.Overview.QuizCompletionRate)
	require.Len(t, report.TopStudents, 1)
	assert.Equal(t, "Student User", report.TopStudents[0].Name)

	code, _ = doRequest(t, r, http.MethodGet, "/api/teacher/analytics?timeframe=decade", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = doRequest(t, r, http.MethodGet, "/api/teacher/analytics?courseId=99", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
