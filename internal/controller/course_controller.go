package controller

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"
	"fmt"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CourseSummary}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCourses()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Description 返回课程及其模块和课时
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetCourse(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// GetProgress godoc
// @Summary 学习进度
// @Description 选课进度、测验成绩与平均分
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ProgressReport}
// @Router /api/student/progress [get]
func (c *CourseController) GetProgress(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	report, err := c.CourseService.Progress(session.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// TeacherCourses godoc
// @Summary 教师的课程
// @Description 当前教师的课程及选课人数，可按状态过滤
// @Tags 教师
// @Produce  json
// @Security ApiKeyAuth
// @Param status query string false "active / draft / archived"
// @Success 200 {object} util.Response{data=[]service.TeacherCourse}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/teacher/courses [get]
func (c *CourseController) TeacherCourses(ctx *gin.Context) {
	status, err := model.ParseCourseStatus(ctx.Query("status"))
	if err != nil {
		util.HandleError(ctx, fmt.Errorf("%w: %v", util.ErrInvalidParam, err))
		return
	}

	session := util.GetSessionFromContext(ctx)
	courses, err := c.CourseService.TeacherCourses(session.UserID, status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
