package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/metrics"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/payment/asaas"
	"github.com/cyberregistro/ledger/internal/queue"
	"github.com/cyberregistro/ledger/internal/reference"
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/telemetry"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errConcurrentConfirmation 并发入账时唯一约束冲突的一方
var errConcurrentConfirmation = errors.New("payment confirmed concurrently")

// PaymentGateway 支付网关能力
type PaymentGateway interface {
	FindOrCreateCustomer(ctx context.Context, input asaas.CustomerInput) (*asaas.Customer, error)
	CreatePixPayment(ctx context.Context, input asaas.PixPaymentInput) (*asaas.PixPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*asaas.Payment, error)
}

// ConfirmationEnqueuer 入账完成后的异步任务投递
type ConfirmationEnqueuer interface {
	EnqueuePaymentConfirmed(payload queue.PaymentConfirmedPayload, opts ...asynq.Option) error
}

// PaymentService 支付入账服务
type PaymentService struct {
	userRepo     repository.UserRepository
	txnRepo      repository.TransactionRepository
	couponSvc    *CouponService
	gateway      PaymentGateway
	enqueuer     ConfirmationEnqueuer
	webhookToken string
	now          func() time.Time
}

// PaymentServiceOptions 支付服务依赖
type PaymentServiceOptions struct {
	UserRepo     repository.UserRepository
	TxnRepo      repository.TransactionRepository
	CouponSvc    *CouponService
	Gateway      PaymentGateway
	Enqueuer     ConfirmationEnqueuer
	WebhookToken string
}

// NewPaymentService 创建支付服务；gateway 与 enqueuer 可为空
func NewPaymentService(opts PaymentServiceOptions) *PaymentService {
	return &PaymentService{
		userRepo:     opts.UserRepo,
		txnRepo:      opts.TxnRepo,
		couponSvc:    opts.CouponSvc,
		gateway:      opts.Gateway,
		enqueuer:     opts.Enqueuer,
		webhookToken: strings.TrimSpace(opts.WebhookToken),
		now:          time.Now,
	}
}

// PaymentDescriptor 网关支付单的入账视图
type PaymentDescriptor struct {
	ID                string
	Status            string
	Value             decimal.Decimal
	BillingType       string
	Description       string
	ExternalReference string
}

// DescriptorFromGateway 从网关支付单构建
func DescriptorFromGateway(payment *asaas.Payment) PaymentDescriptor {
	if payment == nil {
		return PaymentDescriptor{}
	}
	return PaymentDescriptor{
		ID:                payment.ID,
		Status:            payment.Status,
		Value:             payment.Value,
		BillingType:       payment.BillingType,
		Description:       payment.Description,
		ExternalReference: payment.ExternalReference,
	}
}

// ConfirmationResult 入账结果
type ConfirmationResult struct {
	UserID           uint
	Quantity         int64
	CouponID         *uint
	TransactionID    uint
	AlreadyProcessed bool
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// ApplyConfirmation 对已收款的支付单入账；同一支付号至多入账一次
func (s *PaymentService) ApplyConfirmation(ctx context.Context, descriptor PaymentDescriptor) (*ConfirmationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "payment.apply_confirmation")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.id", descriptor.ID),
		attribute.String("payment.status", descriptor.Status),
	)

	result, outcome, err := s.applyConfirmation(ctx, descriptor)
	metrics.PaymentConfirmations.WithLabelValues(outcome).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("ledger.user_id", int64(result.UserID)),
		attribute.Int64("ledger.quantity", result.Quantity),
		attribute.Bool("ledger.already_processed", result.AlreadyProcessed),
	)
	return result, nil
}

func (s *PaymentService) applyConfirmation(ctx context.Context, descriptor PaymentDescriptor) (*ConfirmationResult, string, error) {
	paymentID := strings.TrimSpace(descriptor.ID)
	log := logger.WithContext(ctx, "payment_id", paymentID)
	if paymentID == "" {
		log.Warnw("payment_confirmation_missing_id")
		return nil, metrics.OutcomeMalformed, ErrPaymentIDRequired
	}

	ref, err := reference.Parse(descriptor.ExternalReference, descriptor.Description)
	if err != nil {
		log.Errorw("payment_confirmation_malformed_reference",
			"external_reference", descriptor.ExternalReference,
			"error", err,
		)
		return nil, metrics.OutcomeMalformed, fmt.Errorf("%w: %v", ErrMalformedPaymentReference, err)
	}
	if !asaas.IsConfirmedStatus(descriptor.Status) {
		return nil, metrics.OutcomeNotConfirmed, &PaymentNotConfirmedError{Status: descriptor.Status}
	}

	paymentMethod := strings.ToUpper(strings.TrimSpace(descriptor.BillingType))
	if paymentMethod == "" {
		paymentMethod = constants.PaymentMethodPix
	}
	result := &ConfirmationResult{
		UserID:   ref.UserID,
		Quantity: ref.Quantity,
		CouponID: ref.CouponID,
	}
	amount := descriptor.Value.Round(2)

	err = s.userRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		txnRepo := s.txnRepo.WithTx(tx)

		user, err := userRepo.GetByIDForUpdate(ref.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		existing, err := txnRepo.GetCompletedByPaymentID(paymentID)
		if err != nil {
			return err
		}
		if existing != nil {
			result.AlreadyProcessed = true
			result.TransactionID = existing.ID
			return nil
		}

		if _, err := userRepo.AddCredits(ref.UserID, ref.Quantity); err != nil {
			return err
		}
		txn := &models.Transaction{
			UserID:          ref.UserID,
			Kind:            constants.TransactionKindCreditPurchase,
			Amount:          models.NewMoneyFromDecimal(amount),
			CreditsQuantity: ref.Quantity,
			PaymentMethod:   paymentMethod,
			PaymentID:       paymentID,
			Status:          constants.TransactionStatusCompleted,
			Description:     strings.TrimSpace(descriptor.Description),
		}
		if err := txnRepo.Create(txn); err != nil {
			if repository.IsUniqueViolation(err) {
				return errConcurrentConfirmation
			}
			return err
		}
		result.TransactionID = txn.ID

		if ref.CouponID != nil {
			if s.couponSvc == nil {
				return ErrCouponNotFound
			}
			if _, err := s.couponSvc.RedeemInTx(tx, *ref.CouponID, ref.UserID, txn.ID, amount); err != nil {
				// 已收款但优惠券无法核销，整笔回滚，需人工对账
				log.Errorw("payment_confirmation_coupon_rejected",
					"user_id", ref.UserID,
					"coupon_id", *ref.CouponID,
					"quantity", ref.Quantity,
					"amount", amount.StringFixed(2),
					"error", err,
				)
				return fmt.Errorf("redeem coupon %d: %w", *ref.CouponID, err)
			}
		}
		return nil
	})
	if errors.Is(err, errConcurrentConfirmation) {
		log.Infow("payment_confirmation_concurrent_duplicate", "user_id", ref.UserID)
		result.AlreadyProcessed = true
		if existing, lookupErr := s.txnRepo.GetCompletedByPaymentID(paymentID); lookupErr == nil && existing != nil {
			result.TransactionID = existing.ID
		}
		return result, metrics.OutcomeAlreadyProcessed, nil
	}
	if err != nil {
		log.Errorw("payment_confirmation_failed", "user_id", ref.UserID, "error", err)
		return nil, metrics.OutcomeFailed, err
	}
	if result.AlreadyProcessed {
		log.Infow("payment_confirmation_already_processed",
			"user_id", ref.UserID,
			"transaction_id", result.TransactionID,
		)
		return result, metrics.OutcomeAlreadyProcessed, nil
	}

	metrics.CreditsMoved.WithLabelValues(constants.TransactionKindCreditPurchase).Add(float64(ref.Quantity))
	if ref.CouponID != nil {
		metrics.CouponRedemptions.Inc()
	}
	log.Infow("payment_confirmation_applied",
		"user_id", ref.UserID,
		"quantity", ref.Quantity,
		"transaction_id", result.TransactionID,
		"coupon_id", ref.CouponID,
	)
	s.enqueueConfirmed(ctx, result, paymentID, amount)
	return result, metrics.OutcomeApplied, nil
}

// enqueueConfirmed 提交后投递后续任务，失败只记录日志
func (s *PaymentService) enqueueConfirmed(ctx context.Context, result *ConfirmationResult, paymentID string, amount decimal.Decimal) {
	if s.enqueuer == nil {
		return
	}
	payload := queue.PaymentConfirmedPayload{
		TransactionID: result.TransactionID,
		UserID:        result.UserID,
		PaymentID:     paymentID,
		Quantity:      result.Quantity,
		Amount:        amount.StringFixed(2),
		CouponID:      result.CouponID,
		ConfirmedAt:   s.now(),
	}
	if err := s.enqueuer.EnqueuePaymentConfirmed(payload); err != nil {
		logger.WithContext(ctx).Warnw("payment_confirmed_enqueue_failed",
			"payment_id", paymentID,
			"transaction_id", result.TransactionID,
			"error", err,
		)
	}
}
