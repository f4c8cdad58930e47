package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/service"
)

const (
	contextUser   = "user"
	contextUserID = "user_id"
)

// bearerToken 从 Authorization 头中取出 Bearer Token
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// AuthMiddleware 认证中间件
// 没有 Authorization 头时以匿名用户继续；提供了 token 但无效时返回 401
func AuthMiddleware(svc *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		user, err := svc.Auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(contextUser, user)
		c.Set(contextUserID, user.ID)
		c.Next()
	}
}

// RequireAuth 要求已认证用户，需放在 AuthMiddleware 之后
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCurrentUser(c); !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

// RequirePerm 按 HTTP 方法检查模型级权限
// 这里只回答 "该用户是否可能执行此操作"，对象级检查由处理器或服务完成
func RequirePerm(authz *permissions.Authorizer, app, modelName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perm, ok := permissions.PermForMethod(c.Request.Method, app, modelName)
		if !ok {
			abort(c, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		user, _ := GetCurrentUser(c)
		if !authz.HasPerm(user, perm, nil) {
			if user == nil {
				abort(c, http.StatusUnauthorized, "Authentication required")
				return
			}
			abort(c, http.StatusForbidden, "Permission denied: "+perm)
			return
		}
		c.Next()
	}
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(contextUser)
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok && u != nil
}

// GetUserID 从上下文获取当前用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code": status,
		"msg":  msg,
	})
}
