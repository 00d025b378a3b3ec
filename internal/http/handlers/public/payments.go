package public

import (
	"errors"
	"strings"

	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreatePixRequest 创建 PIX 充值请求
type CreatePixRequest struct {
	UserID          *uint           `json:"userId"`
	Quantity        int64           `json:"quantity"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      string          `json:"couponCode"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerCpfCnpj string          `json:"customerCpfCnpj"`
	CustomerPhone   string          `json:"customerPhone"`
}

// CompletePaymentRequest 用户确认支付请求
type CompletePaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

// CreatePix 创建 PIX 充值单
func (h *Handler) CreatePix(c *gin.Context) {
	var req CreatePixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	userID, ok := resolveActingUserID(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.PaymentService.CreatePix(c.Request.Context(), service.CreatePixInput{
		UserID:          userID,
		Quantity:        req.Quantity,
		Total:           req.Total,
		CouponCode:      req.CouponCode,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerCpfCnpj: req.CustomerCpfCnpj,
		CustomerPhone:   req.CustomerPhone,
	})
	if err != nil {
		respondPaymentCreateError(c, err)
		return
	}
	response.OK(c, gin.H{
		"success": true,
		"payment": gin.H{
			"id":           result.ID,
			"status":       result.Status,
			"value":        models.NewMoneyFromDecimal(result.Value),
			"pixQrCode":    result.QrCodeImage,
			"pixCopyPaste": result.CopyPaste,
			"dueDate":      result.DueDate,
		},
	})
}

// GetPaymentStatus 查询支付状态
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	payment, err := h.PaymentService.GetStatus(c.Request.Context(), strings.TrimSpace(c.Query("id")))
	if err != nil {
		respondPaymentStatusError(c, err)
		return
	}
	response.OK(c, gin.H{
		"id":          payment.ID,
		"status":      payment.Status,
		"value":       models.NewMoneyFromDecimal(payment.Value),
		"description": payment.Description,
	})
}

// CompletePayment 用户主动确认支付并入账
func (h *Handler) CompletePayment(c *gin.Context) {
	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	result, status, err := h.PaymentService.CompletePayment(c.Request.Context(), userID, req.PaymentID)
	if err != nil {
		var notConfirmed *service.PaymentNotConfirmedError
		if errors.As(err, &notConfirmed) {
			respondErrorWithData(c, response.CodeBadRequest, "error.payment_not_confirmed", gin.H{"status": status})
			return
		}
		respondPaymentCompleteError(c, err)
		return
	}
	response.OK(c, gin.H{
		"success":          true,
		"status":           status,
		"alreadyProcessed": result.AlreadyProcessed,
	})
}
