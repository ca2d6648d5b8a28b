package service

import (
	"edureach_backend/internal/model"
)

type DashboardService struct {
	CourseService *CourseService
	QuizService   *QuizService
}

func NewDashboardService(courseService *CourseService, quizService *QuizService) *DashboardService {
	return &DashboardService{
		CourseService: courseService,
		QuizService:   quizService,
	}
}

type StudentStats struct {
	EnrolledCourses  int `json:"enrolledCourses"`
	CompletedCourses int `json:"completedCourses"`
	CompletedQuizzes int `json:"completedQuizzes"`
	AverageScore     int `json:"averageScore"`
}

type StudentDashboard struct {
	Courses         []CourseProgress `json:"courses"`
	UpcomingQuizzes []QuizSummary    `json:"upcomingQuizzes"`
	Stats           StudentStats     `json:"stats"`
}

type TeacherDashboard struct {
	Courses       []TeacherCourse `json:"courses"`
	TotalStudents int64           `json:"totalStudents"`
}

// Dashboard 只会填充与角色对应的一项
type Dashboard struct {
	Role    model.UserRole    `json:"role"`
	Name    string            `json:"name"`
	Menu    []MenuItem        `json:"menu"`
	Student *StudentDashboard `json:"student,omitempty"`
	Teacher *TeacherDashboard `json:"teacher,omitempty"`
}

func (s *DashboardService) DashboardFor(session *model.Session) (*Dashboard, error) {
	dashboard := &Dashboard{
		Role: session.Role,
		Name: session.Name,
		Menu: MenuFor(session.Role),
	}

	if session.IsTeacher() {
		teacher, err := s.teacherDashboard(session.UserID)
		if err != nil {
			return nil, err
		}
		dashboard.Teacher = teacher
		return dashboard, nil
	}

	student, err := s.studentDashboard(session.UserID)
	if err != nil {
		return nil, err
	}
	dashboard.Student = student
	return dashboard, nil
}

func (s *DashboardService) studentDashboard(userID uint) (*StudentDashboard, error) {
	report, err := s.CourseService.Progress(userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.QuizService.ListQuizzes(userID)
	if err != nil {
		return nil, err
	}

	stats := StudentStats{
		EnrolledCourses:  len(report.Courses),
		CompletedQuizzes: len(catalog.Completed),
		AverageScore:     report.AverageScore,
	}
	for _, c := range report.Courses {
		if c.Completed {
			stats.CompletedCourses++
		}
	}

	return &StudentDashboard{
		Courses:         report.Courses,
		UpcomingQuizzes: catalog.Available,
		Stats:           stats,
	}, nil
}

func (s *DashboardService) teacherDashboard(teacherID uint) (*TeacherDashboard, error) {
	courses, err := s.CourseService.TeacherCourses(teacherID, "")
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range courses {
		total += c.Students
	}
	return &TeacherDashboard{Courses: courses, TotalStudents: total}, nil
}
