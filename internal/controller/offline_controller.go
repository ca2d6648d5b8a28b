package controller

import (
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OfflineController struct {
	OfflineService *service.OfflineService
	Hub            *service.ProgressHub
}

func NewOfflineController(offlineService *service.OfflineService, hub *service.ProgressHub) *OfflineController {
	return &OfflineController{OfflineService: offlineService, Hub: hub}
}

// GetShelf godoc
// @Summary 离线内容
// @Description 可下载、下载中、已下载三个列表以及存储占用
// @Tags 离线内容
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.OfflineShelf}
// @Router /api/student/offline [get]
func (c *OfflineController) GetShelf(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	shelf, err := c.OfflineService.Shelf(ctx.Request.Context(), session.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, shelf)
}

// GetOfflineLessons godoc
// @Summary 可离线的课时
// @Tags 离线内容
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.OfflineLesson}
// @Router /api/student/offline/lessons [get]
func (c *OfflineController) GetOfflineLessons(ctx *gin.Context) {
	lessons, err := c.OfflineService.OfflineLessons()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// StartDownload godoc
// @Summary 开始下载
// @Tags 离线内容
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "内容ID"
// @Success 200 {object} util.Response{data=model.OfflineContentView}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "内容不在可下载状态"
// @Router /api/student/offline/{id}/download [post]
func (c *OfflineController) StartDownload(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.OfflineService.StartDownload(session.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// CancelDownload godoc
// @Summary 取消下载
// @Tags 离线内容
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "内容ID"
// @Success 200 {object} util.Response{data=model.OfflineContentView}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "内容不在下载中"
// @Router /api/student/offline/{id}/download [delete]
func (c *OfflineController) CancelDownload(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.OfflineService.CancelDownload(session.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// DeleteContent godoc
// @Summary 删除已下载内容
// @Tags 离线内容
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "内容ID"
// @Success 200 {object} util.Response{data=model.OfflineContentView}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "内容尚未下载"
// @Router /api/student/offline/{id} [delete]
func (c *OfflineController) DeleteContent(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.OfflineService.DeleteContent(session.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// HandleWS godoc
// @Summary 下载进度推送
// @Description 建立 WebSocket 连接，推送 DOWNLOAD_PROGRESS 与 DOWNLOAD_STATE
// @Tags 离线内容
// @Param   token query string true "JWT Token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/student/offline/ws [get]
func (c *OfflineController) HandleWS(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, session.UserID)
}

// UploadPackage godoc
// @Summary 上传离线内容包
// @Tags 教师
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "内容ID"
// @Param file formData file true "内容包"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/offline/{id}/package [post]
func (c *OfflineController) UploadPackage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	pkg, err := util.SniffPackage(src)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	id := ctx.Param("id")
	url, err := c.OfflineService.UploadPackage(ctx.Request.Context(), id, pkg, file.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": id, "url": url})
}
