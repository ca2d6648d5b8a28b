package service

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"fmt"
	"math"
	"sort"
	"time"
)

type AnalyticsRepo interface {
	FindCourseEnrollments(courseIDs []string) ([]model.Enrollment, error)
	FindResultsSince(userIDs []uint, since time.Time) ([]model.QuizResult, error)
	FindDownloadsSince(userIDs []uint, since time.Time) ([]model.OfflineDownload, error)
	CountQuizzes() (int64, error)
}

const (
	DefaultTimeframe = "month"
	topStudentsLimit = 5
)

// 统计窗口，从当前时间往前推
var timeframes = map[string]func(time.Time) time.Time{
	"week":    func(t time.Time) time.Time { return t.AddDate(0, 0, -7) },
	"month":   func(t time.Time) time.Time { return t.AddDate(0, -1, 0) },
	"quarter": func(t time.Time) time.Time { return t.AddDate(0, -3, 0) },
	"year":    func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) },
}

type AnalyticsFilter struct {
	Timeframe string
	CourseID  string
}

type AnalyticsOverview struct {
	TotalStudents      int `json:"totalStudents"`
	AverageCompletion  int `json:"averageCompletion"`
	AverageScore       int `json:"averageScore"`
	QuizCompletionRate int `json:"quizCompletionRate"`
}

type CoursePerformance struct {
	CourseID   string             `json:"courseId"`
	Title      string             `json:"title"`
	Status     model.CourseStatus `json:"status"`
	Students   int                `json:"students"`
	Completion int                `json:"completion"`
}

type StudentPerformance struct {
	UserID           uint   `json:"userId"`
	Name             string `json:"name"`
	AverageScore     int    `json:"averageScore"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
	Progress         int    `json:"progress"`
}

type EngagementMetric struct {
	Name        string `json:"name"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}

// TeacherAnalytics 教师统计页：课程表现、学生排名和参与度
type TeacherAnalytics struct {
	Timeframe   string               `json:"timeframe"`
	Since       time.Time            `json:"since"`
	CourseID    string               `json:"courseId,omitempty"`
	Overview    AnalyticsOverview    `json:"overview"`
	Courses     []CoursePerformance  `json:"courses"`
	TopStudents []StudentPerformance `json:"topStudents"`
	Engagement  []EngagementMetric   `json:"engagement"`
}

type AnalyticsService struct {
	Courses CourseRepo
	Repo    AnalyticsRepo
	now     func() time.Time
}

func NewAnalyticsService(courses CourseRepo, repo AnalyticsRepo) *AnalyticsService {
	return &AnalyticsService{Courses: courses, Repo: repo, now: time.Now}
}

// studentStats 单个学生在窗口内的累计数据
type studentStats struct {
	name        string
	progressSum int
	enrolled    int
	scoreSum    int
	results     int
	quizzes     map[string]struct{}
	downloads   int
}

func (s *AnalyticsService) TeacherAnalytics(teacherID uint, filter AnalyticsFilter) (*TeacherAnalytics, error) {
	timeframe := filter.Timeframe
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	window, ok := timeframes[timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: unknown timeframe %q", util.ErrInvalidParam, filter.Timeframe)
	}
	since := window(s.now())

	courses, err := s.teacherCourses(teacherID, filter.CourseID)
	if err != nil {
		return nil, err
	}
	courseIDs := make([]string, len(courses))
	for i, c := range courses {
		courseIDs[i] = c.ID
	}

	enrollments, err := s.Repo.FindCourseEnrollments(courseIDs)
	if err != nil {
		return nil, err
	}

	// 学生按首次出现的顺序，跨课程只算一次
	stats := make(map[uint]*studentStats)
	var userIDs []uint
	perCourse := make(map[string][]int)
	progressSum, participating := 0, 0
	for _, e := range enrollments {
		st, seen := stats[e.UserID]
		if !seen {
			st = &studentStats{quizzes: make(map[string]struct{})}
			if e.User != nil {
				st.name = e.User.Name
			}
			stats[e.UserID] = st
			userIDs = append(userIDs, e.UserID)
		}
		if e.Progress > 0 && st.progressSum == 0 {
			participating++
		}
		st.progressSum += e.Progress
		st.enrolled++
		perCourse[e.CourseID] = append(perCourse[e.CourseID], e.Progress)
		progressSum += e.Progress
	}

	results, err := s.Repo.FindResultsSince(userIDs, since)
	if err != nil {
		return nil, err
	}
	downloads, err := s.Repo.FindDownloadsSince(userIDs, since)
	if err != nil {
		return nil, err
	}
	quizCount, err := s.Repo.CountQuizzes()
	if err != nil {
		return nil, err
	}

	scoreSum, completedPairs := 0, 0
	for _, r := range results {
		st, ok := stats[r.UserID]
		if !ok {
			continue
		}
		st.scoreSum += r.Score
		st.results++
		scoreSum += r.Score
		if _, done := st.quizzes[r.QuizID]; !done {
			st.quizzes[r.QuizID] = struct{}{}
			completedPairs++
		}
	}
	downloaders := 0
	for _, d := range downloads {
		if st, ok := stats[d.UserID]; ok {
			if st.downloads == 0 {
				downloaders++
			}
			st.downloads++
		}
	}

	students := len(userIDs)
	quizRate := percent(completedPairs, students*int(quizCount))

	report := &TeacherAnalytics{
		Timeframe: timeframe,
		Since:     since,
		CourseID:  filter.CourseID,
		Overview: AnalyticsOverview{
			TotalStudents:      students,
			AverageCompletion:  average(progressSum, len(enrollments)),
			AverageScore:       average(scoreSum, len(results)),
			QuizCompletionRate: quizRate,
		},
		Courses:     make([]CoursePerformance, 0, len(courses)),
		TopStudents: make([]StudentPerformance, 0, topStudentsLimit),
		Engagement: []EngagementMetric{
			{Name: "Course Participation", Percentage: percent(participating, students), Description: "Percentage of students actively participating in course activities"},
			{Name: "Quiz Completion", Percentage: quizRate, Description: "Percentage of assigned quizzes completed by students"},
			{Name: "Content Download", Percentage: percent(downloaders, students), Description: "Percentage of students downloading offline content"},
		},
	}

	for _, c := range courses {
		progress := perCourse[c.ID]
		sum := 0
		for _, p := range progress {
			sum += p
		}
		report.Courses = append(report.Courses, CoursePerformance{
			CourseID:   c.ID,
			Title:      c.Title,
			Status:     c.Status,
			Students:   len(progress),
			Completion: average(sum, len(progress)),
		})
	}

	ranked := make([]StudentPerformance, 0, students)
	for _, id := range userIDs {
		st := stats[id]
		ranked = append(ranked, StudentPerformance{
			UserID:           id,
			Name:             st.name,
			AverageScore:     average(st.scoreSum, st.results),
			QuizzesCompleted: len(st.quizzes),
			Progress:         average(st.progressSum, st.enrolled),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageScore != ranked[j].AverageScore {
			return ranked[i].AverageScore > ranked[j].AverageScore
		}
		return ranked[i].QuizzesCompleted > ranked[j].QuizzesCompleted
	})
	if len(ranked) > topStudentsLimit {
		ranked = ranked[:topStudentsLimit]
	}
	report.TopStudents = append(report.TopStudents, ranked...)

	return report, nil
}

// teacherCourses courseID 不属于该教师时按不存在处理
func (s *AnalyticsService) teacherCourses(teacherID uint, courseID string) ([]model.Course, error) {
	courses, err := s.Courses.FindByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	if courseID == "" {
		return courses, nil
	}
	for _, c := range courses {
		if c.ID == courseID {
			return []model.Course{c}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", util.ErrCourseNotFound, courseID)
}

func average(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	p := int(math.Round(float64(part) * 100 / float64(whole)))
	if p > 100 {
		return 100
	}
	return p
}
