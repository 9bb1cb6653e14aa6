package handler

import (
	"net/http"

	"instasphere/internal/service"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	svc     *service.PresenceService
	userSvc *service.UserService
}

func NewPresenceHandler(svc *service.PresenceService, userSvc *service.UserService) *PresenceHandler {
	return &PresenceHandler{svc: svc, userSvc: userSvc}
}

// Heartbeat 客户端周期调用，刷新在线 TTL
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	if err := h.svc.Heartbeat(c.Request.Context(), user); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PresenceHandler) Offline(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	if err := h.svc.Offline(c.Request.Context(), user); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PresenceHandler) Online(c *gin.Context) {
	list, err := h.svc.Online(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
