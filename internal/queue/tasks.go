package queue

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentConfirmed 支付入账完成任务
	TaskPaymentConfirmed = constants.TaskPaymentConfirmed
)

// PaymentConfirmedPayload 入账完成任务载荷
type PaymentConfirmedPayload struct {
	TransactionID uint      `json:"transaction_id"`
	UserID        uint      `json:"user_id"`
	PaymentID     string    `json:"payment_id"`
	Quantity      int64     `json:"quantity"`
	Amount        string    `json:"amount"`
	CouponID      *uint     `json:"coupon_id,omitempty"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// NewPaymentConfirmedTask 创建入账完成任务
func NewPaymentConfirmedTask(payload PaymentConfirmedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentConfirmed, body), nil
}

// ParsePaymentConfirmedPayload 解析入账完成任务载荷
func ParsePaymentConfirmedPayload(task *asynq.Task) (PaymentConfirmedPayload, error) {
	var payload PaymentConfirmedPayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
