// Package metrics 账本 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// 入账结果标签
const (
	OutcomeApplied          = "applied"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeMalformed        = "malformed_reference"
	OutcomeNotConfirmed     = "not_confirmed"
	OutcomeFailed           = "failed"
)

// PaymentConfirmations 支付入账处理次数
var PaymentConfirmations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "payments",
	Name:      "confirmations_total",
	Help:      "Payment confirmations processed, by outcome.",
}, []string{"outcome"})

// CreditsMoved 积分变动总量
var CreditsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "credits",
	Name:      "moved_total",
	Help:      "Credits added or debited, by transaction kind.",
}, []string{"kind"})

// InsufficientCredits 余额不足被拒的扣费次数
var InsufficientCredits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "credits",
	Name:      "insufficient_total",
	Help:      "Debits rejected because the balance was too low.",
})

// CouponValidations 优惠券校验结果
var CouponValidations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "coupons",
	Name:      "validations_total",
	Help:      "Coupon validations, by result.",
}, []string{"result"})

// CouponRedemptions 优惠券核销次数
var CouponRedemptions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "coupons",
	Name:      "redemptions_total",
	Help:      "Coupon redemptions recorded alongside confirmed payments.",
})

// WebhookEvents 网关 Webhook 事件
var WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "webhooks",
	Name:      "events_total",
	Help:      "Gateway webhook events received, by event type.",
}, []string{"event"})

// OutstandingCredits 未消费积分总量
var OutstandingCredits = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "credits",
	Name:      "outstanding",
	Help:      "Sum of unspent credits across all users.",
})

// ActiveCoupons 当前可用优惠券数量
var ActiveCoupons = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "coupons",
	Name:      "active",
	Help:      "Coupons that are active, unexpired and under their usage cap.",
})

// HTTPRequests HTTP 请求计数
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests, by route, method and status.",
}, []string{"route", "method", "status"})

// HTTPDuration HTTP 请求耗时
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})
