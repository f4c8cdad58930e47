package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/service"
)

// 工具与列表共用的修订历史接口

func listRevisions(c *gin.Context, svc *service.Services, contentType, objectID string) {
	page, pageSize, offset := getPagination(c)
	versions, total, err := svc.Versions.List(c.Request.Context(), contentType, objectID, offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithPagination(c, versions, total, page, pageSize)
}

func getRevision(c *gin.Context, svc *service.Services, contentType, objectID, revisionID string) {
	v, err := svc.Versions.Get(c.Request.Context(), contentType, objectID, revisionID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, v)
}

func diffRevisions(c *gin.Context, svc *service.Services, contentType, objectID, fromID, toID string) {
	diff, err := svc.Versions.Diff(c.Request.Context(), contentType, objectID, fromID, toID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, diff)
}
