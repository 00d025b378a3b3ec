package public

import (
	"errors"

	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

// respondWithMappedErrorData 同 respondWithMappedError，响应附带业务字段
func respondWithMappedErrorData(c *gin.Context, err error, rules []mappedHandlerError, data gin.H, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondErrorWithData(c, rule.code, rule.key, data)
			return
		}
	}
	requestLog(c).Errorw("handler_error", "code", fallbackCode, "key", fallbackKey, "error", err)
	respondErrorWithData(c, fallbackCode, fallbackKey, data)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var ledgerErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidUserID, code: response.CodeBadRequest, key: "error.user_id_invalid"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, key: "error.amount_invalid"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
}

var couponValidateErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
	{target: service.ErrInvalidSubtotal, code: response.CodeBadRequest, key: "error.subtotal_invalid"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCustomerDocument, code: response.CodeBadRequest, key: "error.customer_document_invalid"},
	{target: service.ErrInvalidCustomerPhone, code: response.CodeBadRequest, key: "error.customer_phone_invalid"},
	{target: service.ErrPaymentGatewayUnavailable, code: response.CodeBadGateway, key: "error.payment_gateway_unavailable"},
}

var paymentStatusErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentIDRequired, code: response.CodeBadRequest, key: "error.payment_id_required"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.payment_not_found"},
	{target: service.ErrPaymentGatewayUnavailable, code: response.CodeBadGateway, key: "error.payment_gateway_unavailable"},
}

var paymentConfirmErrorRules = []mappedHandlerError{
	{target: service.ErrForbidden, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrMalformedPaymentReference, code: response.CodeInternal, key: "error.payment_reference_malformed"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, key: "error.coupon_not_found"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
}

var webhookErrorRules = []mappedHandlerError{
	{target: service.ErrWebhookUnauthorized, code: response.CodeUnauthorized, key: "error.webhook_unauthorized"},
	{target: service.ErrWebhookPayloadInvalid, code: response.CodeBadRequest, key: "error.webhook_payload_invalid"},
	{target: service.ErrPaymentIDRequired, code: response.CodeBadRequest, key: "error.payment_id_required"},
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidName, code: response.CodeBadRequest, key: "error.name_invalid"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailExists, code: response.CodeConflict, key: "error.email_exists"},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaConfigInvalid, code: response.CodeInternal, key: "error.captcha_config_invalid"},
}

func respondLedgerError(c *gin.Context, err error) {
	respondWithMappedError(c, err, ledgerErrorRules, response.CodeInternal, "error.credits_operation_failed")
}

func respondPaymentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(ledgerErrorRules, couponValidateErrorRules, paymentCreateErrorRules), response.CodeInternal, "error.payment_create_failed")
}

func respondPaymentStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentStatusErrorRules, response.CodeInternal, "error.internal")
}

func respondPaymentCompleteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(paymentStatusErrorRules, paymentConfirmErrorRules), response.CodeInternal, "error.payment_confirm_failed")
}

func respondWebhookError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(webhookErrorRules, paymentConfirmErrorRules), response.CodeInternal, "error.payment_confirm_failed")
}
