package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 流水类型常量
const (
	TransactionKindCreditPurchase = "credit_purchase"
	TransactionKindCreditUsage    = "credit_usage"
)

// 流水状态常量（当前仅产生 completed）
const (
	TransactionStatusCompleted = "completed"
)

// 优惠券折扣类型
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// 支付方式
const (
	PaymentMethodPix = "PIX"
)

// Asaas Webhook 事件
const (
	GatewayEventPaymentReceived  = "PAYMENT_RECEIVED"
	GatewayEventPaymentConfirmed = "PAYMENT_CONFIRMED"
	GatewayEventPaymentOverdue   = "PAYMENT_OVERDUE"
	GatewayEventPaymentDeleted   = "PAYMENT_DELETED"
	GatewayEventPaymentRefunded  = "PAYMENT_REFUNDED"
)

// 默认描述
const (
	DefaultDebitDescription = "Débito de créditos"
	DefaultAddCreditsAmount = 10
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskPaymentConfirmed = "payment:confirmed"
)

// 账本事件路由键
const (
	EventPaymentConfirmed = "ledger.payment.confirmed"
	EventCouponRedeemed   = "ledger.coupon.redeemed"
)
