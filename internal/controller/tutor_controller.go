package controller

import (
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	TutorService *service.TutorService
}

func NewTutorController(tutorService *service.TutorService) *TutorController {
	return &TutorController{TutorService: tutorService}
}

// AskRequest 向 AI 助教提问
// swagger:model AskRequest
type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// GetHistory godoc
// @Summary AI 助教对话记录
// @Tags AI助教
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TutorMessage}
// @Router /api/student/tutor [get]
func (c *TutorController) GetHistory(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	util.Success(ctx, c.TutorService.History(session.ID))
}

// Ask godoc
// @Summary 向 AI 助教提问
// @Description AI 服务不可用时返回固定的道歉消息
// @Tags AI助教
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AskRequest true "问题"
// @Success 200 {object} util.Response{data=model.TutorMessage}
// @Failure 400 {object} util.Response
// @Failure 412 {object} util.Response "问题为空"
// @Router /api/student/tutor [post]
func (c *TutorController) Ask(ctx *gin.Context) {
	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session := util.GetSessionFromContext(ctx)
	msg, err := c.TutorService.Ask(ctx.Request.Context(), session.ID, req.Message)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, msg)
}
