package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/service"
	"github.com/ashwinyue/toolhub/internal/service/users"
)

// UserHandler 用户与用户组处理器
type UserHandler struct {
	svc *service.Services
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *service.Services) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetCASL 当前用户（可以是匿名用户）的 CASL 规则
// GET /api/v1/user/casl
func (h *UserHandler) GetCASL(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	Success(c, h.svc.CASL.RulesForUser(c.Request.Context(), user))
}

// ListUsers 分页列出用户
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize, offset := getPagination(c)
	list, total, err := h.svc.Users.List(c.Request.Context(), offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, userInfos(c, list), total, page, pageSize)
}

// GetUser 获取用户
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.svc.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, userInfo(c, user))
}

// UpdateUser 修改用户，本人或管理员
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	target, err := h.svc.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	var req users.ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	updated, err := h.svc.Users.Update(c.Request.Context(), target, &req, actor)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, userInfo(c, updated))
}

// DeleteUser 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	target, err := h.svc.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	if err := h.svc.Users.Delete(c.Request.Context(), target, actor); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// ========== 用户组 ==========

// ListGroups 列出用户组
// GET /api/v1/groups
func (h *UserHandler) ListGroups(c *gin.Context) {
	groups, err := h.svc.Users.ListGroups(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, groups)
}

// GetGroup 获取用户组
// GET /api/v1/groups/:id
func (h *UserHandler) GetGroup(c *gin.Context) {
	group, err := h.svc.Users.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, group)
}

// CreateGroup 新建用户组
// POST /api/v1/groups
func (h *UserHandler) CreateGroup(c *gin.Context) {
	var req users.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	group, err := h.svc.Users.CreateGroup(c.Request.Context(), &req, actor)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, group)
}

// RenameGroup 重命名用户组
// PUT /api/v1/groups/:id
func (h *UserHandler) RenameGroup(c *gin.Context) {
	group, err := h.svc.Users.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	var req users.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	group, err = h.svc.Users.RenameGroup(c.Request.Context(), group, &req, actor)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, group)
}

// DeleteGroup 删除用户组
// DELETE /api/v1/groups/:id
func (h *UserHandler) DeleteGroup(c *gin.Context) {
	group, err := h.svc.Users.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	if err := h.svc.Users.DeleteGroup(c.Request.Context(), group, actor); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// ListMembers 用户组成员
// GET /api/v1/groups/:id/members
func (h *UserHandler) ListMembers(c *gin.Context) {
	group, err := h.svc.Users.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	members, err := h.svc.Users.Members(c.Request.Context(), group)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, userInfos(c, members))
}

// AddMember 添加成员
// PUT /api/v1/groups/:id/members/:user_id
func (h *UserHandler) AddMember(c *gin.Context) {
	h.changeMembership(c, h.svc.Users.AddMember)
}

// RemoveMember 移除成员
// DELETE /api/v1/groups/:id/members/:user_id
func (h *UserHandler) RemoveMember(c *gin.Context) {
	h.changeMembership(c, h.svc.Users.RemoveMember)
}

type membershipFunc func(ctx context.Context, group *model.Group, userID string, actor *model.User) error

func (h *UserHandler) changeMembership(c *gin.Context, fn membershipFunc) {
	group, err := h.svc.Users.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	if err := fn(c.Request.Context(), group, c.Param("user_id"), actor); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// userInfo 本人与管理员可以看到邮箱
func userInfo(c *gin.Context, u *model.User) *model.UserInfo {
	viewer, _ := middleware.GetCurrentUser(c)
	if permissions.IsSelfOrAdmin.Test(viewer, u) {
		return u.ToUserInfo()
	}
	return u.PublicInfo()
}

func userInfos(c *gin.Context, list []*model.User) []*model.UserInfo {
	infos := make([]*model.UserInfo, 0, len(list))
	for _, u := range list {
		infos = append(infos, userInfo(c, u))
	}
	return infos
}
