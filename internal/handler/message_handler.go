package handler

import (
	"net/http"
	"strconv"

	"instasphere/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc     *service.MessageService
	userSvc *service.UserService
}

func NewMessageHandler(svc *service.MessageService, userSvc *service.UserService) *MessageHandler {
	return &MessageHandler{svc: svc, userSvc: userSvc}
}

// List 频道消息，升序返回最近 100 条
func (h *MessageHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.svc.List(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type SendMessageReq struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	m, err := h.svc.Send(c.Request.Context(), user, req.ChannelID, req.Content)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *MessageHandler) Like(c *gin.Context) {
	m, err := h.svc.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
