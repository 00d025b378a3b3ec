package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strings"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/metrics"
	"github.com/cyberregistro/ledger/internal/payment/asaas"
)

// 网关事件处理结果
const (
	WebhookActionApplied          = "applied"
	WebhookActionAlreadyProcessed = "already_processed"
	WebhookActionIgnored          = "ignored"
)

// WebhookInput 网关回调输入
type WebhookInput struct {
	Token string
	Body  []byte
}

// WebhookResult 网关回调处理结果
type WebhookResult struct {
	Event        string
	PaymentID    string
	Action       string
	Confirmation *ConfirmationResult
}

type webhookPayload struct {
	Event   string         `json:"event"`
	Payment *asaas.Payment `json:"payment"`
}

// VerifyWebhookToken 校验 asaas-access-token；未配置时放行
func (s *PaymentService) VerifyWebhookToken(token string) error {
	if s.webhookToken == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.webhookToken)) != 1 {
		return ErrWebhookUnauthorized
	}
	return nil
}

// HandleWebhook 处理网关事件；非收款事件只记录日志
func (s *PaymentService) HandleWebhook(ctx context.Context, input WebhookInput) (*WebhookResult, error) {
	if err := s.VerifyWebhookToken(input.Token); err != nil {
		paymentLogger().Warnw("payment_webhook_token_mismatch")
		return nil, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(input.Body, &payload); err != nil {
		paymentLogger("body_size", len(input.Body)).Warnw("payment_webhook_payload_invalid", "error", err)
		return nil, ErrWebhookPayloadInvalid
	}
	event := strings.ToUpper(strings.TrimSpace(payload.Event))
	if event == "" || payload.Payment == nil {
		paymentLogger("event", payload.Event).Warnw("payment_webhook_payload_incomplete")
		return nil, ErrWebhookPayloadInvalid
	}
	metrics.WebhookEvents.WithLabelValues(event).Inc()

	result := &WebhookResult{
		Event:     event,
		PaymentID: payload.Payment.ID,
		Action:    WebhookActionIgnored,
	}
	log := paymentLogger("event", event, "payment_id", payload.Payment.ID)

	switch event {
	case constants.GatewayEventPaymentReceived, constants.GatewayEventPaymentConfirmed:
		if strings.TrimSpace(payload.Payment.ExternalReference) == "" {
			log.Infow("webhook_event_ignored", "reason", "missing_external_reference")
			return result, nil
		}
		confirmation, err := s.ApplyConfirmation(ctx, DescriptorFromGateway(payload.Payment))
		if err != nil {
			var notConfirmed *PaymentNotConfirmedError
			if errors.As(err, &notConfirmed) {
				log.Infow("webhook_event_ignored", "reason", "status_not_confirmed", "status", notConfirmed.Status)
				return result, nil
			}
			return nil, err
		}
		result.Confirmation = confirmation
		result.Action = WebhookActionApplied
		if confirmation.AlreadyProcessed {
			result.Action = WebhookActionAlreadyProcessed
		}
	case constants.GatewayEventPaymentOverdue:
		log.Infow("webhook_payment_overdue")
	case constants.GatewayEventPaymentDeleted, constants.GatewayEventPaymentRefunded:
		log.Infow("webhook_payment_cancelled", "status", payload.Payment.Status)
	default:
		log.Infow("webhook_event_ignored", "reason", "unhandled_event")
	}
	return result, nil
}
