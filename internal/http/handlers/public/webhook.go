package public

import (
	"io"

	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	webhookTokenHeader  = "asaas-access-token"
	maxWebhookBodyBytes = 1 << 20
)

// PaymentWebhook 支付网关事件回调；非入账事件一律 200 以免网关重试
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.webhook_payload_invalid", nil)
		return
	}

	result, err := h.PaymentService.HandleWebhook(c.Request.Context(), service.WebhookInput{
		Token: c.GetHeader(webhookTokenHeader),
		Body:  body,
	})
	if err != nil {
		respondWebhookError(c, err)
		return
	}
	requestLog(c).Infow("payment_webhook_handled",
		"event", result.Event,
		"payment_id", result.PaymentID,
		"action", result.Action,
	)
	response.OK(c, gin.H{
		"received": true,
		"event":    result.Event,
		"action":   result.Action,
	})
}
