package controller

import (
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Service: svc}
}

// @Summary List quizzes
// @Description Students see active quizzes only, admins see everything.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.Service.ListQuizzes(user.Principal())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": rows, "total": len(rows)})
}

// @Summary Get a quiz with its questions
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Service.GetQuiz(user.Principal(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary Create a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateQuizReq true "quiz definition"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateQuiz(user.Principal(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, quiz)
}

// @Summary Update a quiz
// @Description Replaces scalar fields that are present and, when a question
// @Description list is supplied, merges it into the stored question set.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body service.UpdateQuizReq true "fields to update"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.UpdateQuiz(user.Principal(), ctx.Param("id"), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// @Summary Delete a quiz and its attempts
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.DeleteQuiz(user.Principal(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary Aggregate results for a quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id}/results [get]
func (c *QuizController) Results(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.Service.QuizResults(user.Principal(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, report)
}
