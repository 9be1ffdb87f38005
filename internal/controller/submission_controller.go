package controller

import (
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service     *service.SubmissionService
	QuizService *service.QuizService
}

func NewSubmissionController(svc *service.SubmissionService, quizSvc *service.QuizService) *SubmissionController {
	return &SubmissionController{Service: svc, QuizService: quizSvc}
}

type submitReq struct {
	Answers []service.QuestionAnswer `json:"answers" binding:"required"`
}

// @Summary Submit answers for a quiz
// @Description Grades the submission, records the attempt and returns the
// @Description scored result.
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body submitReq true "submitted answers"
// @Success 201 {object} util.Response
// @Router /api/quizzes/{id}/submit [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitQuiz(user.Principal(), ctx.Param("id"), req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary List the authenticated user's past attempts
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/attempts/history [get]
func (c *SubmissionController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.QuizService.AttemptHistory(user.Principal())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": rows, "total": len(rows)})
}
