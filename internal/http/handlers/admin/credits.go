package admin

import (
	"errors"

	"github.com/cyberregistro/ledger/internal/constants"
	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCreditsRequest 手动加积分请求
type AddCreditsRequest struct {
	UserID      uint   `json:"userId"`
	Amount      *int64 `json:"amount"`
	Description string `json:"description"`
}

// AddCredits 为用户手动增加积分，amount 缺省为 10
func (h *Handler) AddCredits(c *gin.Context) {
	var req AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.UserID == 0 {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	amount := int64(constants.DefaultAddCreditsAmount)
	if req.Amount != nil {
		amount = *req.Amount
	}

	result, err := h.LedgerService.Credit(req.UserID, amount, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserID):
			respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.credits_grant_failed", err)
		}
		return
	}
	adminID, _ := c.Get(handlershared.ContextAdminIDKey)
	requestLog(c).Infow("admin_credits_added",
		"admin_id", adminID,
		"user_id", req.UserID,
		"amount", result.Amount,
		"new_balance", result.NewBalance,
	)
	response.OK(c, gin.H{
		"success":         true,
		"previousBalance": result.PreviousBalance,
		"newBalance":      result.NewBalance,
		"added":           result.Amount,
	})
}
