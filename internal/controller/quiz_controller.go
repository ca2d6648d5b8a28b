package controller

import (
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SelectAnswerRequest 作答请求
// swagger:model SelectAnswerRequest
type SelectAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Option     *int   `json:"option" binding:"required"`
}

// ListQuizzes godoc
// @Summary 测验列表
// @Description Available 为未完成的测验，Completed 带最佳成绩
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.QuizCatalog}
// @Router /api/student/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	catalog, err := c.QuizService.ListQuizzes(session.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, catalog)
}

// StartQuiz godoc
// @Summary 开始测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "已有进行中的测验"
// @Router /api/student/quizzes/{id}/start [post]
func (c *QuizController) StartQuiz(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	attempt, err := c.QuizService.StartQuiz(session.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// CurrentAttempt godoc
// @Summary 当前测验状态
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Router /api/student/quiz-attempt [get]
func (c *QuizController) CurrentAttempt(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	util.Success(ctx, c.QuizService.CurrentAttempt(session.UserID))
}

// SelectAnswer godoc
// @Summary 选择答案
// @Description 记录或覆盖当前题目的答案
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SelectAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 409 {object} util.Response
// @Failure 412 {object} util.Response
// @Router /api/student/quiz-attempt/answer [post]
func (c *QuizController) SelectAnswer(ctx *gin.Context) {
	var req SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session := util.GetSessionFromContext(ctx)
	attempt, err := c.QuizService.SelectAnswer(session.UserID, req.QuestionID, *req.Option)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Advance godoc
// @Summary 下一题或提交
// @Description 最后一题时计算成绩并完成测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 409 {object} util.Response
// @Failure 412 {object} util.Response "当前题目未作答"
// @Router /api/student/quiz-attempt/advance [post]
func (c *QuizController) Advance(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	attempt, err := c.QuizService.Advance(session.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Retry godoc
// @Summary 重新作答
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 409 {object} util.Response
// @Router /api/student/quiz-attempt/retry [post]
func (c *QuizController) Retry(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	attempt, err := c.QuizService.Retry(session.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Reset godoc
// @Summary 放弃测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Router /api/student/quiz-attempt [delete]
func (c *QuizController) Reset(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	util.Success(ctx, c.QuizService.Reset(session.UserID))
}

// Review godoc
// @Summary 答题回顾
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuestionReview}
// @Failure 409 {object} util.Response "测验尚未完成"
// @Router /api/student/quiz-attempt/review [get]
func (c *QuizController) Review(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	review, err := c.QuizService.Review(session.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, review)
}
