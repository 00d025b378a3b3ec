package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidAmount      = errors.New("amount must be a positive integer")
	ErrInvalidUserID      = errors.New("user id is required")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidName        = errors.New("invalid name")
	ErrEmailExists        = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not satisfy policy")
	ErrAdminExists        = errors.New("admin already exists")

	ErrInsufficientCredits = errors.New("insufficient credits")

	ErrCouponInvalid     = errors.New("coupon invalid")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponInactive    = errors.New("coupon inactive")
	ErrCouponExpired     = errors.New("coupon expired")
	ErrCouponUsageLimit  = errors.New("coupon usage limit reached")
	ErrCouponCodeExists  = errors.New("coupon code already exists")
	ErrInvalidSubtotal   = errors.New("subtotal must be positive")
	ErrCouponRedeemed    = errors.New("coupon already redeemed for transaction")
	ErrPartnerTokenEmpty = errors.New("partner token is required")

	ErrMalformedPaymentReference = errors.New("malformed payment reference")
	ErrPaymentNotConfirmed       = errors.New("payment not confirmed")
	ErrPaymentIDRequired         = errors.New("payment id is required")
	ErrInvalidCustomerDocument   = errors.New("cpf/cnpj must have 11 or 14 digits")
	ErrInvalidCustomerPhone      = errors.New("phone must have 10 or 11 digits")
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrWebhookUnauthorized       = errors.New("webhook token mismatch")
	ErrWebhookPayloadInvalid     = errors.New("webhook payload invalid")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// InsufficientCreditsError 余额不足，携带当前余额与所需数量
type InsufficientCreditsError struct {
	CurrentCredits int64
	Required       int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("%s: current=%d required=%d", ErrInsufficientCredits.Error(), e.CurrentCredits, e.Required)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// PaymentNotConfirmedError 网关状态尚未收款
type PaymentNotConfirmedError struct {
	Status string
}

func (e *PaymentNotConfirmedError) Error() string {
	return fmt.Sprintf("%s: status=%s", ErrPaymentNotConfirmed.Error(), e.Status)
}

func (e *PaymentNotConfirmedError) Is(target error) bool {
	return target == ErrPaymentNotConfirmed
}
