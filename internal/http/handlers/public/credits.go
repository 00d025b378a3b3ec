package public

import (
	"errors"
	"io"

	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckCreditsRequest 余额检查请求
type CheckCreditsRequest struct {
	UserID *uint  `json:"userId"`
	Amount *int64 `json:"amount"`
}

// DebitCreditsRequest 扣减积分请求
type DebitCreditsRequest struct {
	UserID      *uint  `json:"userId"`
	Amount      *int64 `json:"amount"`
	Description string `json:"description"`
}

// CheckCredits 检查余额是否足够，amount 缺省为 1
func (h *Handler) CheckCredits(c *gin.Context) {
	var req CheckCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	userID, ok := resolveActingUserID(c, req.UserID)
	if !ok {
		return
	}
	amount := int64(1)
	if req.Amount != nil {
		amount = *req.Amount
	}

	result, err := h.LedgerService.CheckBalance(userID, amount)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.OK(c, gin.H{
		"success":        true,
		"currentCredits": result.CurrentCredits,
		"sufficient":     result.Sufficient,
	})
}

// DebitCredits 扣减积分
func (h *Handler) DebitCredits(c *gin.Context) {
	var req DebitCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	userID, ok := resolveActingUserID(c, req.UserID)
	if !ok {
		return
	}
	if req.Amount == nil {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	result, err := h.LedgerService.Debit(userID, *req.Amount, req.Description)
	if err != nil {
		var insufficient *service.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			respondErrorWithData(c, response.CodeBadRequest, "error.insufficient_credits", gin.H{
				"currentCredits": insufficient.CurrentCredits,
				"required":       insufficient.Required,
			})
			return
		}
		respondLedgerError(c, err)
		return
	}
	response.OK(c, gin.H{
		"success":         true,
		"previousBalance": result.PreviousBalance,
		"newBalance":      result.NewBalance,
		"debited":         result.Amount,
	})
}

// GetCredits 当前用户余额
func (h *Handler) GetCredits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	credits, err := h.LedgerService.Balance(userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.OK(c, gin.H{"credits": credits})
}

// ListTransactions 当前用户积分流水
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	query := handlershared.ParsePageQuery(c)
	items, total, err := h.LedgerService.ListTransactions(repository.TransactionListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		UserID:   userID,
		Kind:     c.Query("type"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.transactions_failed", err)
		return
	}
	response.OK(c, gin.H{
		"transactions": items,
		"pagination":   response.NewPagination(query.Page, query.PageSize, total),
	})
}
