package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/events"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/provider"
	"github.com/cyberregistro/ledger/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentConfirmed, c.handlePaymentConfirmed)
}

// handlePaymentConfirmed 入账后的后续动作：清理合作方看板缓存并对外发布事件
func (c *Consumer) handlePaymentConfirmed(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_confirmed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePaymentConfirmedPayload(task)
	if err != nil {
		logger.Warnw("worker_payment_confirmed_unmarshal_failed", "error", err)
		return err
	}
	if payload.TransactionID == 0 || payload.UserID == 0 {
		logger.Debugw("worker_payment_confirmed_skip_invalid_payload",
			"transaction_id", payload.TransactionID,
			"user_id", payload.UserID,
		)
		return nil
	}
	log := logger.SW("payment_id", payload.PaymentID, "transaction_id", payload.TransactionID)

	if payload.CouponID != nil && c.CouponService != nil {
		if err := c.CouponService.InvalidatePartnerStats(ctx, *payload.CouponID); err != nil {
			log.Warnw("worker_partner_stats_invalidate_failed", "coupon_id", *payload.CouponID, "error", err)
		}
	}

	if c.Events == nil {
		return nil
	}
	occurredAt := payload.ConfirmedAt
	if occurredAt.IsZero() {
		occurredAt = c.now()
	}
	var errs []error
	if err := c.Events.Publish(ctx, constants.EventPaymentConfirmed, events.Event{
		Type:       constants.EventPaymentConfirmed,
		OccurredAt: occurredAt,
		Data: events.PaymentConfirmedData{
			TransactionID: payload.TransactionID,
			UserID:        payload.UserID,
			PaymentID:     payload.PaymentID,
			Quantity:      payload.Quantity,
			Amount:        payload.Amount,
			CouponID:      payload.CouponID,
		},
	}); err != nil {
		log.Warnw("worker_payment_confirmed_publish_failed", "error", err)
		errs = append(errs, err)
	}
	if payload.CouponID != nil {
		if err := c.Events.Publish(ctx, constants.EventCouponRedeemed, events.Event{
			Type:       constants.EventCouponRedeemed,
			OccurredAt: occurredAt,
			Data: events.CouponRedeemedData{
				CouponID:      *payload.CouponID,
				UserID:        payload.UserID,
				TransactionID: payload.TransactionID,
				PaymentID:     payload.PaymentID,
			},
		}); err != nil {
			log.Warnw("worker_coupon_redeemed_publish_failed", "coupon_id", *payload.CouponID, "error", err)
			errs = append(errs, err)
		}
	}
	// 返回错误交由 asynq 重试；事件消费方需按 payment_id 去重
	return errors.Join(errs...)
}

// refreshGauges 刷新账本指标
func (c *Consumer) refreshGauges() {
	if c == nil || c.DashboardService == nil {
		return
	}
	overview, err := c.DashboardService.RefreshGauges(c.now())
	if err != nil {
		logger.Warnw("worker_refresh_gauges_failed", "error", err)
		return
	}
	logger.Debugw("worker_gauges_refreshed",
		"outstanding_credits", overview.OutstandingCredits,
		"active_coupons", overview.ActiveCoupons,
	)
}
