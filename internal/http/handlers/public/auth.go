package public

import (
	"errors"

	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(req.CaptchaPayloadRequest.ToServicePayload()); err != nil {
			respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.captcha_invalid")
			return
		}
	}

	user, err := h.UserAuthService.Register(service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			handlershared.RespondPolicyError(c, response.CodeBadRequest, err, "error.password_weak")
			return
		}
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.register_failed")
		return
	}
	response.Created(c, gin.H{
		"success": true,
		"user":    user,
	})
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.login_failed")
		return
	}
	response.OK(c, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      user,
	})
}

// GetMe 当前用户信息
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(userID)
	if err != nil {
		respondWithMappedError(c, err, ledgerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.OK(c, gin.H{"user": user})
}
