package handler

import (
	"context"
	"errors"
	"net/http"

	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/gin-gonic/gin"
)

type partnerLister interface {
	Partners(ctx context.Context, selfID string) ([]mysql.VerifiedPartner, error)
}

type postLister interface {
	List(ctx context.Context, viewerID string) ([]model.Post, error)
}

// ExploreHandler 发现页聚合：认证在线用户 + 最新帖子一把取齐
type ExploreHandler struct {
	dms   partnerLister
	posts postLister
}

func NewExploreHandler(dms partnerLister, posts postLister) *ExploreHandler {
	return &ExploreHandler{dms: dms, posts: posts}
}

func (h *ExploreHandler) Feed(c *gin.Context) {
	selfID := currentUserID(c)

	users, err := h.dms.Partners(c.Request.Context(), selfID)
	if err != nil {
		writeErr(c, err)
		return
	}

	posts, err := h.posts.List(c.Request.Context(), selfID)
	if err != nil {
		// 帖子表缺失（demo 库）时发现页照常给人，帖子留空
		if !errors.Is(err, pkg.ErrCollectionMissing) {
			writeErr(c, err)
			return
		}
		posts = nil
	}
	if users == nil {
		users = []mysql.VerifiedPartner{}
	}
	if posts == nil {
		posts = []model.Post{}
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"posts": posts,
	})
}
