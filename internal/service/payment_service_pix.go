package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/payment/asaas"
	"github.com/cyberregistro/ledger/internal/reference"

	"github.com/shopspring/decimal"
)

// CreatePixInput 创建 PIX 充值输入
type CreatePixInput struct {
	UserID          uint
	Quantity        int64
	Total           decimal.Decimal
	CouponCode      string
	CustomerName    string
	CustomerEmail   string
	CustomerCpfCnpj string
	CustomerPhone   string
}

// PixChargeResult 创建 PIX 充值结果
type PixChargeResult struct {
	ID          string
	Status      string
	Value       decimal.Decimal
	Discount    decimal.Decimal
	CouponID    *uint
	QrCodeImage string
	CopyPaste   string
	DueDate     string
	Reference   string
}

// CreatePix 创建 PIX 充值单；带优惠码时按折后金额收款并把优惠券 ID 写入外部引用
func (s *PaymentService) CreatePix(ctx context.Context, input CreatePixInput) (*PixChargeResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentGatewayUnavailable
	}
	if input.UserID == 0 {
		return nil, ErrInvalidUserID
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidAmount
	}
	if !input.Total.IsPositive() {
		return nil, ErrInvalidSubtotal
	}
	document := digitsOnly(input.CustomerCpfCnpj)
	if len(document) != 11 && len(document) != 14 {
		return nil, ErrInvalidCustomerDocument
	}
	phone := digitsOnly(input.CustomerPhone)
	if len(phone) != 10 && len(phone) != 11 {
		return nil, ErrInvalidCustomerPhone
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	charge := input.Total.Round(2)
	discount := decimal.Zero
	var couponID *uint
	if strings.TrimSpace(input.CouponCode) != "" {
		if s.couponSvc == nil {
			return nil, ErrCouponNotFound
		}
		quote, err := s.couponSvc.Validate(input.CouponCode, charge)
		if err != nil {
			return nil, err
		}
		charge = quote.FinalTotal
		discount = quote.Discount
		id := quote.Coupon.ID
		couponID = &id
	}
	if !charge.IsPositive() {
		return nil, fmt.Errorf("%w: charge after discount must be positive", ErrInvalidAmount)
	}

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = user.Name
	}
	email := strings.TrimSpace(input.CustomerEmail)
	if email == "" {
		email = user.Email
	}
	log := paymentLogger("user_id", input.UserID, "quantity", input.Quantity)

	customer, err := s.gateway.FindOrCreateCustomer(ctx, asaas.CustomerInput{
		Name:        name,
		Email:       email,
		CpfCnpj:     document,
		MobilePhone: phone,
	})
	if err != nil {
		log.Warnw("payment_pix_customer_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}

	now := s.now()
	ref := reference.Build(input.UserID, input.Quantity, couponID, now)
	pix, err := s.gateway.CreatePixPayment(ctx, asaas.PixPaymentInput{
		CustomerID:        customer.ID,
		Value:             charge,
		DueDate:           now.Add(24 * time.Hour),
		Description:       fmt.Sprintf("Compra de %d crédito(s)", input.Quantity),
		ExternalReference: ref,
	})
	if err != nil {
		log.Warnw("payment_pix_create_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}
	log.Infow("payment_pix_created",
		"payment_id", pix.ID,
		"value", charge.StringFixed(2),
		"coupon_id", couponID,
		"external_reference", ref,
	)
	return &PixChargeResult{
		ID:          pix.ID,
		Status:      pix.Status,
		Value:       pix.Value,
		Discount:    discount,
		CouponID:    couponID,
		QrCodeImage: pix.QrCodeImage,
		CopyPaste:   pix.CopyPaste,
		DueDate:     pix.DueDate,
		Reference:   ref,
	}, nil
}

// GetStatus 查询网关支付状态
func (s *PaymentService) GetStatus(ctx context.Context, paymentID string) (*asaas.Payment, error) {
	if s.gateway == nil {
		return nil, ErrPaymentGatewayUnavailable
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, ErrPaymentIDRequired
	}
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, asaas.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}
	return payment, nil
}

// CompletePayment 用户主动确认：回查网关状态后入账，只能确认自己的支付单
func (s *PaymentService) CompletePayment(ctx context.Context, userID uint, paymentID string) (*ConfirmationResult, string, error) {
	payment, err := s.GetStatus(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	if !asaas.IsConfirmedStatus(payment.Status) {
		return nil, payment.Status, &PaymentNotConfirmedError{Status: payment.Status}
	}
	ref, err := reference.Parse(payment.ExternalReference, payment.Description)
	if err != nil {
		return nil, payment.Status, fmt.Errorf("%w: %v", ErrMalformedPaymentReference, err)
	}
	if ref.UserID != userID {
		paymentLogger("payment_id", payment.ID, "user_id", userID).
			Warnw("payment_complete_owner_mismatch", "owner_id", ref.UserID)
		return nil, payment.Status, ErrForbidden
	}
	result, err := s.ApplyConfirmation(ctx, DescriptorFromGateway(payment))
	if err != nil {
		return nil, payment.Status, err
	}
	return result, payment.Status, nil
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
