package controller

import (
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// TeacherAnalytics godoc
// @Summary 教学统计
// @Description 课程表现、学生排名与参与度，按时间范围和课程过滤
// @Tags 教师
// @Produce  json
// @Security ApiKeyAuth
// @Param timeframe query string false "week / month / quarter / year，默认 month"
// @Param courseId query string false "课程ID"
// @Success 200 {object} util.Response{data=service.TeacherAnalytics}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/analytics [get]
func (c *AnalyticsController) TeacherAnalytics(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	report, err := c.AnalyticsService.TeacherAnalytics(session.UserID, service.AnalyticsFilter{
		Timeframe: ctx.Query("timeframe"),
		CourseID:  ctx.Query("courseId"),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
