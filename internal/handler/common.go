package handler

import (
	"errors"
	"net/http"

	"instasphere/internal/middleware"
	"instasphere/internal/pkg"

	"github.com/gin-gonic/gin"
)

// writeErr 错误分类映射状态码：校验 400、权限 403、集合缺失 404，其余 500
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkg.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	case errors.Is(err, pkg.ErrAuthorization):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
	case errors.Is(err, pkg.ErrCollectionMissing):
		c.JSON(http.StatusNotFound, gin.H{"msg": err.Error()})
	case errors.Is(err, pkg.ErrWrite):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
	}
}

func currentUserID(c *gin.Context) string {
	v, _ := c.Get(middleware.ContextUserIDKey)
	id, _ := v.(string)
	return id
}
