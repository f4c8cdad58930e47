package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/service"
	"github.com/ashwinyue/toolhub/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, user.ToUserInfo())
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, resp)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters")
		return
	}

	accessToken, newRefreshToken, err := h.svc.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, "Invalid refresh token")
		return
	}

	Success(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
	})
}

// Logout 用户登出，撤销当前访问令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		BadRequest(c, "Missing Authorization header")
		return
	}

	if err := h.svc.Auth.RevokeToken(c.Request.Context(), token); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// GetCurrentUser 获取当前用户
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	Success(c, user.ToUserInfo())
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters")
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	if err := h.svc.Auth.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// ListTokens 当前用户的令牌
func (h *AuthHandler) ListTokens(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	tokens, err := h.svc.Auth.ListTokens(c.Request.Context(), user.ID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, tokens)
}

// RevokeToken 按 ID 撤销令牌，仅令牌所属用户或管理员
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	token, err := h.svc.Auth.GetToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	if !h.svc.Authz.Can(user, permissions.AppOAuth, permissions.ModelAccessToken, permissions.ActionDelete, token) {
		Forbidden(c, "Permission denied")
		return
	}

	if err := h.svc.Auth.RevokeTokenByID(c.Request.Context(), token.ID); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// bearer 取出请求中的 Bearer Token
func bearer(c *gin.Context) (string, bool) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}
