package handler

import (
	"net/http"

	"instasphere/internal/service"

	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	svc     *service.VerificationService
	userSvc *service.UserService
}

func NewVerificationHandler(svc *service.VerificationService, userSvc *service.UserService) *VerificationHandler {
	return &VerificationHandler{svc: svc, userSvc: userSvc}
}

func (h *VerificationHandler) Status(c *gin.Context) {
	v, err := h.svc.Status(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// RequestCode 给本人邮箱发认证码
func (h *VerificationHandler) RequestCode(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	if err := h.svc.RequestEmailCode(user.Email); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "code sent"})
}

type VerifyEmailReq struct {
	Code string `json:"code"`
}

func (h *VerificationHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	if err := h.svc.VerifyEmail(c.Request.Context(), user, req.Code); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "verified"})
}

type AdminVerifyReq struct {
	UserID string `json:"user_id"`
	Level  string `json:"level"`
}

// AdminVerify 管理员手工认证其他用户
func (h *VerificationHandler) AdminVerify(c *gin.Context) {
	var req AdminVerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	operator, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	if err := h.svc.AdminVerify(c.Request.Context(), operator, req.UserID, req.Level); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "verified"})
}
