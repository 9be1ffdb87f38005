package controller

import (
	"strconv"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Service *service.UserService
}

func NewUserController(svc *service.UserService) *UserController {
	return &UserController{Service: svc}
}

// @Summary List user accounts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	users, total, err := c.Service.ListUsers(user.Principal(), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": users, "total": total})
}

type updateRoleReq struct {
	Role model.UserRole `json:"role" binding:"required"`
}

// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param body body updateRoleReq true "new role"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req updateRoleReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.Service.UpdateRole(user.Principal(), ctx.Param("id"), req.Role)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, updated)
}

// @Summary Delete a user account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.DeleteUser(user.Principal(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}
