package handler

import (
	"net/http"

	"instasphere/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc     *service.PostService
	userSvc *service.UserService
}

func NewPostHandler(svc *service.PostService, userSvc *service.UserService) *PostHandler {
	return &PostHandler{svc: svc, userSvc: userSvc}
}

// List 最新 50 条帖子，附带当前用户的点赞状态
func (h *PostHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type CreatePostReq struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	post, err := h.svc.Create(c.Request.Context(), user, req.Title, req.Content, req.ImageURL)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// Like 点赞/取消点赞翻转
func (h *PostHandler) Like(c *gin.Context) {
	post, err := h.svc.ToggleLike(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Share(c *gin.Context) {
	post, err := h.svc.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Comments 帖子评论树，顶层 + 一层回复
func (h *PostHandler) Comments(c *gin.Context) {
	list, err := h.svc.Comments(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type AddCommentReq struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req AddCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), user, c.Param("id"), req.Content, req.ParentID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.svc.DeleteComment(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *PostHandler) CommentLike(c *gin.Context) {
	comment, err := h.svc.ToggleCommentLike(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
