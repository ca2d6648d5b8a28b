package service

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyticsRepo struct {
	enrollments []model.Enrollment
	results     []model.QuizResult
	downloads   []model.OfflineDownload
	quizzes     int64
	err         error
}

func (r *fakeAnalyticsRepo) FindCourseEnrollments(courseIDs []string) ([]model.Enrollment, error) {
	if r.err != nil {
		return nil, r.err
	}
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

func containsUser(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *fakeAnalyticsRepo) FindResultsSince(userIDs []uint, since time.Time) ([]model.QuizResult, error) {
	var out []model.QuizResult
	for _, res := range r.results {
		if containsUser(userIDs, res.UserID) && !res.CompletedAt.Before(since) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeAnalyticsRepo) FindDownloadsSince(userIDs []uint, since time.Time) ([]model.OfflineDownload, error) {
	var out []model.OfflineDownload
	for _, d := range r.downloads {
		if containsUser(userIDs, d.UserID) && !d.CompletedAt.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeAnalyticsRepo) CountQuizzes() (int64, error) {
	return r.quizzes, nil
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 9, 0, 0, 0, time.UTC)
}

func newTestAnalyticsService() (*AnalyticsService, *fakeAnalyticsRepo) {
	courses := &fakeCourseRepo{courses: []model.Course{
		{CatalogBase: model.CatalogBase{ID: "a"}, Title: "Algebra", TeacherID: 7, Status: model.CourseActive},
		{CatalogBase: model.CatalogBase{ID: "b"}, Title: "Old Physics", TeacherID: 7, Status: model.CourseArchived},
		{CatalogBase: model.CatalogBase{ID: "c"}, Title: "Biology", TeacherID: 8, Status: model.CourseActive},
	}}
	alice := &model.User{Name: "Alice"}
	bob := &model.User{Name: "Bob"}
	carol := &model.User{Name: "Carol"}
	repo := &fakeAnalyticsRepo{
		enrollments: []model.Enrollment{
			{UserID: 1, CourseID: "a", Progress: 80, User: alice},
			{UserID: 2, CourseID: "a", Progress: 40, User: bob},
			{UserID: 1, CourseID: "b", Progress: 60, User: alice},
			{UserID: 3, CourseID: "b", Progress: 0, User: carol},
			{UserID: 4, CourseID: "c", Progress: 100},
		},
		results: []model.QuizResult{
			{UserID: 1, QuizID: "q1", Score: 90, CompletedAt: day(time.October, 10)},
			{UserID: 1, QuizID: "q2", Score: 70, CompletedAt: day(time.October, 1)},
			{UserID: 1, QuizID: "q1", Score: 100, CompletedAt: day(time.August, 1)},
			{UserID: 2, QuizID: "q1", Score: 95, CompletedAt: day(time.October, 12)},
			{UserID: 4, QuizID: "q1", Score: 10, CompletedAt: day(time.October, 12)},
		},
		downloads: []model.OfflineDownload{
			{UserID: 1, ContentID: "1", CompletedAt: day(time.October, 2)},
			{UserID: 1, ContentID: "2", CompletedAt: day(time.October, 3)},
			{UserID: 3, ContentID: "1", CompletedAt: day(time.July, 1)},
		},
		quizzes: 2,
	}
	svc := NewAnalyticsService(courses, repo)
	svc.now = func() time.Time { return time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestAnalyticsService_DefaultMonth(t *testing.T) {
	svc, _ := newTestAnalyticsService()

	report, err := svc.TeacherAnalytics(7, AnalyticsFilter{})
	require.NoError(t, err)

	assert.Equal(t, "month", report.Timeframe)
	assert.Equal(t, time.Date(2026, time.September, 15, 12, 0, 0, 0, time.UTC), report.Since)
	assert.Equal(t, AnalyticsOverview{
		TotalStudents:      3,
		AverageCompletion:  45,
		AverageScore:       85,
		QuizCompletionRate: 50,
	}, report.Overview)

	require.Len(t, report.Courses, 2)
	assert.Equal(t, CoursePerformance{CourseID: "a", Title: "Algebra", Status: model.CourseActive, Students: 2, Completion: 60}, report.Courses[0])
	assert.Equal(t, CoursePerformance{CourseID: "b", Title: "Old Physics", Status: model.CourseArchived, Students: 2, Completion: 30}, report.Courses[1])

	require.Len(t, report.TopStudents, 3)
	assert.Equal(t, StudentPerformance{UserID: 2, Name: "Bob", AverageScore: 95, QuizzesCompleted: 1, Progress: 40}, report.TopStudents[0])
	assert.Equal(t, StudentPerformance{UserID: 1, Name: "Alice", AverageScore: 80, QuizzesCompleted: 2, Progress: 70}, report.TopStudents[1])
	assert.Equal(t, "Carol", report.TopStudents[2].Name)
	assert.Zero(t, report.TopStudents[2].AverageScore)

	require.Len(t, report.Engagement, 3)
	assert.Equal(t, "Course Participation", report.Engagement[0].Name)
	assert.Equal(t, 67, report.Engagement[0].Percentage)
	assert.Equal(t, 50, report.Engagement[1].Percentage)
	assert.Equal(t, "Content Download", report.Engagement[2].Name)
	assert.Equal(t, 33, report.Engagement[2].Percentage)
}

func TestAnalyticsService_YearWidensWindow(t *testing.T) {
	svc, _ := newTestAnalyticsService()

	report, err := svc.TeacherAnalytics(7, AnalyticsFilter{Timeframe: "year"})
	require.NoError(t, err)

	assert.Equal(t, 89, report.Overview.AverageScore)
	assert.Equal(t, 50, report.Overview.QuizCompletionRate)
	assert.Equal(t, 87, report.TopStudents[1].AverageScore)
	assert.Equal(t, 67, report.Engagement[2].Percentage)
}

func TestAnalyticsService_CourseFilter(t *testing.T) {
	svc, _ := newTestAnalyticsService()

	report, err := svc.TeacherAnalytics(7, AnalyticsFilter{CourseID: "b", Timeframe: "week"})
	require.NoError(t, err)

	assert.Equal(t, "b", report.CourseID)
	require.Len(t, report.Courses, 1)
	assert.Equal(t, 2, report.Overview.TotalStudents)
	assert.Equal(t, 30, report.Overview.AverageCompletion)
	// 一周内只有 Alice 的 q1
	assert.Equal(t, 90, report.Overview.AverageScore)
	assert.Equal(t, 25, report.Overview.QuizCompletionRate)
}

func TestAnalyticsService_RejectsBadInput(t *testing.T) {
	svc, _ := newTestAnalyticsService()

	_, err := svc.TeacherAnalytics(7, AnalyticsFilter{Timeframe: "decade"})
	assert.ErrorIs(t, err, util.ErrInvalidParam)

	// 其他教师的课程
	_, err = svc.TeacherAnalytics(7, AnalyticsFilter{CourseID: "c"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestAnalyticsService_NoCourses(t *testing.T) {
	svc, _ := newTestAnalyticsService()

	report, err := svc.TeacherAnalytics(99, AnalyticsFilter{})
	require.NoError(t, err)

	assert.Zero(t, report.Overview)
	assert.Empty(t, report.Courses)
	assert.Empty(t, report.TopStudents)
	for _, m := range report.Engagement {
		assert.Zero(t, m.Percentage)
	}
}

func TestAnalyticsService_RepoError(t *testing.T) {
	svc, repo := newTestAnalyticsService()
	repo.err = errors.New("db down")

	_, err := svc.TeacherAnalytics(7, AnalyticsFilter{})
	assert.EqualError(t, err, "db down")
}
