package handler

import (
	"net/http"
	"strconv"

	"instasphere/internal/service"

	"github.com/gin-gonic/gin"
)

type DMHandler struct {
	svc     *service.DirectMessageService
	userSvc *service.UserService
}

func NewDMHandler(svc *service.DirectMessageService, userSvc *service.UserService) *DMHandler {
	return &DMHandler{svc: svc, userSvc: userSvc}
}

// Partners 私信侧栏：已认证且在线的用户
func (h *DMHandler) Partners(c *gin.Context) {
	list, err := h.svc.Partners(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *DMHandler) Conversation(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.svc.ListConversation(c.Request.Context(), currentUserID(c), c.Param("id"), limit)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type SendDMReq struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

func (h *DMHandler) Send(c *gin.Context) {
	var req SendDMReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	m, err := h.svc.Send(c.Request.Context(), user, req.ReceiverID, req.Content)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *DMHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
