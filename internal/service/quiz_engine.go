package service

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"fmt"
	"time"
)

// QuizEngine 单个用户的答题状态机：
// not_started -> in_progress -> completed，completed -> in_progress（重做），
// 任意状态 -> not_started（取消/返回列表）。QuizEngine 本身不加锁，由 QuizService 串行调用。
type QuizEngine struct {
	quiz        *model.Quiz
	state       model.AttemptState
	current     int
	answers     map[string]int
	correct     int
	score       int
	startedAt   time.Time
	completedAt time.Time
	now         func() time.Time
}

// NewQuizEngine 返回未开始状态的答题引擎
func NewQuizEngine() *QuizEngine {
	return &QuizEngine{
		state:   model.AttemptNotStarted,
		answers: make(map[string]int),
		now:     time.Now,
	}
}

// State 当前答题状态
func (e *QuizEngine) State() model.AttemptState {
	return e.state
}

// Start 开始新的答题，进行中的答题需要先 Reset
func (e *QuizEngine) Start(quiz *model.Quiz) error {
	if e.state == model.AttemptInProgress {
		return fmt.Errorf("%w: quiz %s already in progress", util.ErrInvalidState, e.quiz.ID)
	}
	if quiz == nil {
		return fmt.Errorf("%w: no quiz given", util.ErrPreconditionFailed)
	}
	if err := quiz.Validate(); err != nil {
		return fmt.Errorf("%w: %v", util.ErrPreconditionFailed, err)
	}
	e.begin(quiz)
	return nil
}

// Retry 在完成后以同一份测验重新开始
func (e *QuizEngine) Retry() error {
	if e.state != model.AttemptCompleted {
		return fmt.Errorf("%w: retry requires a completed attempt, got %s", util.ErrInvalidState, e.state)
	}
	e.begin(e.quiz)
	return nil
}

func (e *QuizEngine) begin(quiz *model.Quiz) {
	e.quiz = quiz
	e.state = model.AttemptInProgress
	e.current = 0
	e.answers = make(map[string]int)
	e.correct = 0
	e.score = 0
	e.startedAt = e.now()
	e.completedAt = time.Time{}
}

// SelectAnswer 记录或覆盖某题的选择
func (e *QuizEngine) SelectAnswer(questionID string, option int) error {
	if e.state != model.AttemptInProgress {
		return fmt.Errorf("%w: cannot answer while %s", util.ErrInvalidState, e.state)
	}
	idx := e.quiz.QuestionByID(questionID)
	if idx < 0 {
		return fmt.Errorf("%w: question %s is not part of quiz %s", util.ErrPreconditionFailed, questionID, e.quiz.ID)
	}
	if n := len(e.quiz.Questions[idx].Options); option < 0 || option >= n {
		return fmt.Errorf("%w: option %d out of range [0,%d)", util.ErrPreconditionFailed, option, n)
	}
	e.answers[questionID] = option
	return nil
}

// Advance 当前题已作答时前进；在最后一题时计分并完成
func (e *QuizEngine) Advance() error {
	if e.state != model.AttemptInProgress {
		return fmt.Errorf("%w: cannot advance while %s", util.ErrInvalidState, e.state)
	}
	question := e.quiz.Questions[e.current]
	if _, answered := e.answers[question.ID]; !answered {
		return fmt.Errorf("%w: question %s has no answer", util.ErrPreconditionFailed, question.ID)
	}

	if e.current < len(e.quiz.Questions)-1 {
		e.current++
		return nil
	}

	e.correct, e.score = model.ScoreAnswers(e.quiz, e.answers)
	e.state = model.AttemptCompleted
	e.completedAt = e.now()
	return nil
}

// Reset 丢弃当前答题回到初始状态
func (e *QuizEngine) Reset() {
	e.quiz = nil
	e.state = model.AttemptNotStarted
	e.current = 0
	e.answers = make(map[string]int)
	e.correct = 0
	e.score = 0
	e.startedAt = time.Time{}
	e.completedAt = time.Time{}
}

// Quiz 当前答题使用的测验，未开始时为 nil
func (e *QuizEngine) Quiz() *model.Quiz {
	return e.quiz
}

// Snapshot 返回答题快照，不含正确答案
func (e *QuizEngine) Snapshot() model.QuizAttempt {
	attempt := model.QuizAttempt{
		State:   e.state,
		Answers: make(map[string]int, len(e.answers)),
	}
	if e.quiz == nil {
		return attempt
	}

	for k, v := range e.answers {
		attempt.Answers[k] = v
	}
	attempt.QuizID = e.quiz.ID
	attempt.QuizTitle = e.quiz.Title
	attempt.Category = e.quiz.Category
	attempt.CurrentIndex = e.current
	attempt.TotalQuestions = len(e.quiz.Questions)
	startedAt := e.startedAt
	attempt.StartedAt = &startedAt

	switch e.state {
	case model.AttemptInProgress:
		q := e.quiz.Questions[e.current]
		view := &model.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		}
		if v, ok := e.answers[q.ID]; ok {
			selected := v
			view.Selected = &selected
			attempt.CanAdvance = true
		}
		attempt.CurrentQuestion = view
		attempt.IsLastQuestion = e.current == len(e.quiz.Questions)-1
	case model.AttemptCompleted:
		attempt.CorrectCount = e.correct
		attempt.Score = e.score
		attempt.Feedback = model.Feedback(e.score)
		completedAt := e.completedAt
		attempt.CompletedAt = &completedAt
	}
	return attempt
}

// Review 完成后逐题对照，未作答的题 SelectedIndex 为空
func (e *QuizEngine) Review() ([]model.QuestionReview, error) {
	if e.state != model.AttemptCompleted {
		return nil, fmt.Errorf("%w: review requires a completed attempt, got %s", util.ErrInvalidState, e.state)
	}

	reviews := make([]model.QuestionReview, 0, len(e.quiz.Questions))
	for i := range e.quiz.Questions {
		q := &e.quiz.Questions[i]
		r := model.QuestionReview{
			QuestionID:    q.ID,
			Text:          q.Text,
			CorrectIndex:  q.CorrectAnswer,
			CorrectOption: q.Options[q.CorrectAnswer],
		}
		if v, ok := e.answers[q.ID]; ok {
			selected := v
			option := q.Options[v]
			r.SelectedIndex = &selected
			r.SelectedOption = &option
		}
		r.IsCorrect = q.IsCorrect(r.SelectedIndex)
		reviews = append(reviews, r)
	}
	return reviews, nil
}
