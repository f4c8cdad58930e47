package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/service/applications"
	"github.com/ashwinyue/toolhub/internal/service/auth"
	"github.com/ashwinyue/toolhub/internal/service/crawler"
	"github.com/ashwinyue/toolhub/internal/service/lists"
	"github.com/ashwinyue/toolhub/internal/service/toolinfo"
	"github.com/ashwinyue/toolhub/internal/service/users"
	"github.com/ashwinyue/toolhub/internal/service/version"
)

// SuccessResponse 成功响应
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应，ErrorCode 和 Field 仅在校验失败时返回
type ErrorResponse struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	ErrorCode string `json:"error_code,omitempty"`
	Field     string `json:"field,omitempty"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// Created 创建成功响应 (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

// NoContent 无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Msg: msg})
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 401, Msg: msg})
}

// Forbidden 403 错误响应
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Code: 403, Msg: msg})
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Code: 404, Msg: msg})
}

// Conflict 409 错误响应
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, ErrorResponse{Code: 409, Msg: msg})
}

// InternalServerError 500 错误响应
func InternalServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Msg: msg})
}

// errorStatuses 服务层哨兵错误到 HTTP 状态码的映射
var errorStatuses = []struct {
	err    error
	status int
}{
	{gorm.ErrRecordNotFound, http.StatusNotFound},
	{toolinfo.ErrNotFound, http.StatusNotFound},
	{lists.ErrNotFound, http.StatusNotFound},
	{users.ErrNotFound, http.StatusNotFound},
	{crawler.ErrNotFound, http.StatusNotFound},
	{applications.ErrNotFound, http.StatusNotFound},
	{version.ErrNotFound, http.StatusNotFound},

	{lists.ErrForbidden, http.StatusForbidden},
	{users.ErrForbidden, http.StatusForbidden},
	{crawler.ErrForbidden, http.StatusForbidden},
	{applications.ErrForbidden, http.StatusForbidden},
	{auth.ErrAccountDisabled, http.StatusForbidden},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrTokenRevoked, http.StatusUnauthorized},

	{gorm.ErrDuplicatedKey, http.StatusConflict},
	{toolinfo.ErrToolExists, http.StatusConflict},
	{crawler.ErrURLExists, http.StatusConflict},
	{crawler.ErrAlreadyRunning, http.StatusConflict},
	{auth.ErrUserExists, http.StatusConflict},

	{lists.ErrUnknownTools, http.StatusBadRequest},
	{lists.ErrFavorites, http.StatusBadRequest},
	{users.ErrBuiltinGroup, http.StatusBadRequest},
	{users.ErrUnknownGroups, http.StatusBadRequest},
	{crawler.ErrInvalidURL, http.StatusBadRequest},
	{applications.ErrInvalidRedirectURI, http.StatusBadRequest},
	{auth.ErrInvalidPassword, http.StatusBadRequest},
}

// Error 根据错误类型返回相应的错误响应
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var ve *toolinfo.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:      http.StatusBadRequest,
			Msg:       ve.Message,
			ErrorCode: ve.Code,
			Field:     ve.Field,
		})
		return
	}

	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			c.JSON(es.status, ErrorResponse{Code: es.status, Msg: err.Error()})
			return
		}
	}

	_ = c.Error(err)
	InternalServerError(c, "internal server error")
}

// PaginationData 分页响应数据结构
type PaginationData struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages,omitempty"`
}

// SuccessWithPagination 分页成功响应
func SuccessWithPagination(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data: PaginationData{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// getPagination 解析 page 与 page_size 查询参数
func getPagination(c *gin.Context) (page, pageSize, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
