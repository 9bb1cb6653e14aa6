package handler

import (
	"net/http"

	"instasphere/internal/service"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	svc     *service.ChannelService
	userSvc *service.UserService
}

func NewChannelHandler(svc *service.ChannelService, userSvc *service.UserService) *ChannelHandler {
	return &ChannelHandler{svc: svc, userSvc: userSvc}
}

func (h *ChannelHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type CreateChannelReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req CreateChannelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	ch, err := h.svc.Create(c.Request.Context(), user, req.Name, req.Description)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
