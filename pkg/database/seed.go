package database

import (
	"edureach_backend/internal/model"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 演示账号的默认密码
const DemoPassword = "edureach123"

func q(id, text string, correct int, options ...string) model.Question {
	return model.Question{
		CatalogBase:   model.CatalogBase{ID: id},
		Text:          text,
		Options:       model.StringArray(options),
		CorrectAnswer: correct,
	}
}

func sampleQuizzes() []model.Quiz {
	return []model.Quiz{
		{
			CatalogBase: model.CatalogBase{ID: "1"},
			Title:       "Algebra Fundamentals",
			Description: "Test your knowledge of basic algebraic concepts",
			Category:    "Mathematics",
			TimeLimit:   15,
			Questions: []model.Question{
				q("1-1", "What is the solution to the equation 2x + 5 = 13?", 1, "x = 3", "x = 4", "x = 5", "x = 6"),
				q("1-2", "Which of the following is a quadratic equation?", 1, "y = 2x + 3", "y = x²", "y = 3/x", "y = √x"),
				q("1-3", "If f(x) = 3x - 2, what is f(4)?", 1, "8", "10", "12", "14"),
				q("1-4", "Simplify the expression: 3(2x - 4) + 5", 1, "6x - 12 + 5", "6x - 7", "6x - 12", "6x + 5"),
				q("1-5", "Solve for x: 5x - 3 = 2x + 9", 1, "x = 3", "x = 4", "x = 5", "x = 6"),
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "2"},
			Title:       "Physics Concepts",
			Description: "Test your understanding of basic physics principles",
			Category:    "Science",
			TimeLimit:   20,
			Questions: []model.Question{
				q("2-1", "Which of Newton's laws states that an object at rest stays at rest unless acted upon by an external force?", 0, "First Law", "Second Law", "Third Law", "Fourth Law"),
				q("2-2", "What is the unit of force in the International System of Units (SI)?", 2, "Watt", "Joule", "Newton", "Pascal"),
				q("2-3", "What is the formula for calculating work?", 0, "W = F × d", "W = m × a", "W = F / d", "W = m × g"),
				q("2-4", "Which of the following is a vector quantity?", 2, "Mass", "Temperature", "Velocity", "Time"),
				q("2-5", "What is the acceleration due to gravity on Earth (approximate value)?", 2, "5 m/s²", "8 m/s²", "9.8 m/s²", "12 m/s²"),
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "3"},
			Title:       "Literary Analysis",
			Description: "Test your understanding of literary elements and techniques",
			Category:    "Literature",
			TimeLimit:   25,
			Questions: []model.Question{
				q("3-1", "What is the main purpose of foreshadowing in literature?", 1, "To confuse the reader", "To hint at events to come", "To describe the setting", "To develop character traits"),
				q("3-2", "Which literary device involves a contradiction of terms?", 2, "Metaphor", "Simile", "Oxymoron", "Alliteration"),
				q("3-3", "What is the protagonist in a story?", 1, "The main setting", "The main character", "The main conflict", "The main antagonist"),
				q("3-4", "Which of the following is NOT a type of narrative point of view?", 3, "First person", "Second person", "Third person limited", "Fourth person"),
				q("3-5", "What is a sonnet?", 1, "A type of novel", "A 14-line poem with a specific rhyme scheme", "A dramatic monologue", "A type of play"),
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "4"},
			Title:       "Basic Mathematics",
			Description: "Test your knowledge of basic math concepts",
			Category:    "Mathematics",
			TimeLimit:   10,
			Questions: []model.Question{
				q("4-1", "What is 7 × 8?", 1, "54", "56", "64", "72"),
				q("4-2", "What is the square root of 81?", 2, "7", "8", "9", "10"),
				q("4-3", "What is 15% of 80?", 1, "8", "12", "15", "18"),
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "5"},
			Title:       "Grammar Basics",
			Description: "Test your understanding of English grammar",
			Category:    "English",
			TimeLimit:   15,
			Questions: []model.Question{
				q("5-1", "Which of the following is a proper noun?", 1, "City", "London", "Building", "River"),
				q("5-2", "Which sentence uses the correct form of the verb?", 2, "They was going to the store.", "She were happy about the news.", "He is playing basketball.", "We is studying for the test."),
				q("5-3", "Which word is an adverb?", 1, "Happy", "Quickly", "Beautiful", "Table"),
			},
		},
	}
}

func sampleOfflineContent() []model.OfflineContentItem {
	item := func(id, title string, t model.ContentType, course, size string, downloaded bool) model.OfflineContentItem {
		return model.OfflineContentItem{
			CatalogBase:    model.CatalogBase{ID: id},
			Title:          title,
			Type:           t,
			Course:         course,
			Size:           size,
			SeedDownloaded: downloaded,
		}
	}
	return []model.OfflineContentItem{
		item("1", "Algebra Fundamentals", model.ContentVideo, "Mathematics", "45 MB", false),
		item("2", "Newton's Laws of Motion", model.ContentDocument, "Science", "12 MB", false),
		item("3", "Literary Analysis Techniques", model.ContentDocument, "English Literature", "8 MB", false),
		item("4", "Physics Concepts Quiz", model.ContentQuiz, "Science", "2 MB", false),
		item("5", "Introduction to Quadratic Equations", model.ContentVideo, "Mathematics", "38 MB", true),
		item("6", "Shakespeare's Macbeth Analysis", model.ContentDocument, "English Literature", "10 MB", true),
	}
}

func lesson(id, title, content string, t model.LessonType, offline bool, pos int) model.Lesson {
	return model.Lesson{
		CatalogBase:      model.CatalogBase{ID: id},
		Title:            title,
		Content:          content,
		Type:             t,
		OfflineAvailable: offline,
		Position:         pos,
	}
}

func sampleCourses(teacherID uint) []model.Course {
	return []model.Course{
		{
			CatalogBase: model.CatalogBase{ID: "1"},
			Title:       "Mathematics - Algebra Fundamentals",
			Description: "Learn the basics of algebra including equations, functions, and graphs.",
			Category:    "Mathematics",
			Status:      model.CourseActive,
			TeacherID:   teacherID,
			Modules: []model.CourseModule{
				{
					CatalogBase: model.CatalogBase{ID: "1-1"},
					Title:       "Introduction to Algebra",
					Position:    1,
					Lessons: []model.Lesson{
						lesson("1-1-1", "What is Algebra?", "Algebra is a branch of mathematics dealing with symbols and the rules for manipulating these symbols.", model.LessonText, true, 1),
						lesson("1-1-2", "Basic Algebraic Operations", "Learn about addition, subtraction, multiplication, and division in algebra.", model.LessonVideo, false, 2),
					},
				},
				{
					CatalogBase: model.CatalogBase{ID: "1-2"},
					Title:       "Solving Equations",
					Position:    2,
					Lessons: []model.Lesson{
						lesson("1-2-1", "Linear Equations", "A linear equation is an equation that forms a straight line when plotted on a graph.", model.LessonText, true, 1),
						lesson("1-2-2", "Quadratic Equations", "A quadratic equation is a second-degree polynomial equation.", model.LessonVideo, true, 2),
					},
				},
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "2"},
			Title:       "Science - Physics Basics",
			Description: "Understand the fundamental principles of physics including mechanics and energy.",
			Category:    "Science",
			Status:      model.CourseActive,
			TeacherID:   teacherID,
			Modules: []model.CourseModule{
				{
					CatalogBase: model.CatalogBase{ID: "2-1"},
					Title:       "Mechanics",
					Position:    1,
					Lessons: []model.Lesson{
						lesson("2-1-1", "Newton's Laws of Motion", "Newton's laws of motion are three physical laws that describe the relationship between a body and the forces acting upon it.", model.LessonText, true, 1),
						lesson("2-1-2", "Force and Motion", "Learn about the relationship between force and motion.", model.LessonQuiz, false, 2),
					},
				},
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "3"},
			Title:       "English Literature",
			Description: "Explore classic works and the techniques used to analyse them.",
			Category:    "Literature",
			Status:      model.CourseActive,
			TeacherID:   teacherID,
			Modules: []model.CourseModule{
				{
					CatalogBase: model.CatalogBase{ID: "3-1"},
					Title:       "Shakespeare's Works",
					Position:    1,
					Lessons: []model.Lesson{
						lesson("3-1-1", "Macbeth: An Overview", "Macbeth is a tragedy about ambition and its consequences.", model.LessonText, true, 1),
					},
				},
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "4"},
			Title:       "Introduction to Chemistry",
			Description: "Atoms, molecules and the reactions between them.",
			Category:    "Science",
			Status:      model.CourseDraft,
			TeacherID:   teacherID,
		},
		{
			CatalogBase: model.CatalogBase{ID: "5"},
			Title:       "Ancient History",
			Description: "Early civilisations from Mesopotamia to Rome.",
			Category:    "History",
			Status:      model.CourseArchived,
			TeacherID:   teacherID,
		},
	}
}

func hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Seed 表为空时写入演示数据，已有数据的表不做修改
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		student, teacher, err := seedUsers(tx)
		if err != nil {
			return err
		}

		var count int64
		tx.Model(&model.Quiz{}).Count(&count)
		if count == 0 {
			quizzes := sampleQuizzes()
			for i := range quizzes {
				for j := range quizzes[i].Questions {
					quizzes[i].Questions[j].Position = j + 1
				}
			}
			if err := tx.Create(&quizzes).Error; err != nil {
				return fmt.Errorf("quizzes: %w", err)
			}
		}

		tx.Model(&model.OfflineContentItem{}).Count(&count)
		if count == 0 {
			items := sampleOfflineContent()
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("offline content: %w", err)
			}
		}

		tx.Model(&model.Course{}).Count(&count)
		if count == 0 {
			courses := sampleCourses(teacher.ID)
			if err := tx.Create(&courses).Error; err != nil {
				return fmt.Errorf("courses: %w", err)
			}
		}

		tx.Model(&model.Enrollment{}).Count(&count)
		if count == 0 {
			enrollments := []model.Enrollment{
				{UserID: student.ID, CourseID: "1", Progress: 65, CurrentModule: "Module 4: Quadratic Equations"},
				{UserID: student.ID, CourseID: "2", Progress: 42, CurrentModule: "Module 2: Newton's Laws of Motion"},
				{UserID: student.ID, CourseID: "3", Progress: 78, CurrentModule: "Module 5: Shakespeare's Works"},
			}
			if err := tx.Omit("Course").Create(&enrollments).Error; err != nil {
				return fmt.Errorf("enrollments: %w", err)
			}
		}

		tx.Model(&model.QuizResult{}).Count(&count)
		if count == 0 {
			// 成绩沿用原型中的展示数据
			results := []model.QuizResult{
				{UserID: student.ID, QuizID: "4", Score: 85, Correct: 3, Total: 3, CompletedAt: time.Date(2023, 5, 15, 10, 0, 0, 0, time.Local)},
				{UserID: student.ID, QuizID: "5", Score: 70, Correct: 2, Total: 3, CompletedAt: time.Date(2023, 6, 2, 10, 0, 0, 0, time.Local)},
			}
			if err := tx.Create(&results).Error; err != nil {
				return fmt.Errorf("quiz results: %w", err)
			}
		}

		tx.Model(&model.OfflineDownload{}).Count(&count)
		if count == 0 {
			var downloads []model.OfflineDownload
			for _, item := range sampleOfflineContent() {
				if item.SeedDownloaded {
					downloads = append(downloads, model.OfflineDownload{UserID: student.ID, ContentID: item.ID, CompletedAt: time.Now()})
				}
			}
			if err := tx.Create(&downloads).Error; err != nil {
				return fmt.Errorf("offline downloads: %w", err)
			}
		}

		log.Println("Sample data ready")
		return nil
	})
}

func seedUsers(tx *gorm.DB) (*model.User, *model.User, error) {
	demo := []model.User{
		{Name: "Alex Johnson", Email: "student@edureach.com", Role: model.Student},
		{Name: "Jane Smith", Email: "teacher@edureach.com", Role: model.Teacher},
	}

	out := make([]*model.User, len(demo))
	for i := range demo {
		var user model.User
		err := tx.Where("email = ?", demo[i].Email).First(&user).Error
		if err == nil {
			out[i] = &user
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}

		hashed, err := hash(DemoPassword)
		if err != nil {
			return nil, nil, err
		}
		demo[i].Password = hashed
		if err := tx.Create(&demo[i]).Error; err != nil {
			return nil, nil, fmt.Errorf("user %s: %w", demo[i].Email, err)
		}
		out[i] = &demo[i]
	}
	return out[0], out[1], nil
}
