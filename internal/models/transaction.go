package models

import (
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"

	"gorm.io/gorm"
)

// Transaction 积分流水（只追加）
// CompletedPaymentID 仅在 status=completed 且存在外部支付号时等于 PaymentID，
// 其唯一索引保证同一外部支付最多入账一次
type Transaction struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                             // 主键
	UserID             uint      `gorm:"index;not null" json:"user_id"`                                    // 用户ID
	Kind               string    `gorm:"column:type;size:32;not null;index" json:"type"`                   // 类型（credit_purchase/credit_usage）
	Amount             Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`              // 支付金额
	CreditsQuantity    int64     `gorm:"not null" json:"credits_quantity"`                                 // 积分变动（正为增加，负为扣减）
	PaymentMethod      string    `gorm:"size:32" json:"payment_method"`                                    // 支付方式
	PaymentID          string    `gorm:"size:128;index" json:"payment_id"`                                 // 外部支付号
	CompletedPaymentID *string   `gorm:"size:128;uniqueIndex:idx_transactions_completed_payment" json:"-"` // 幂等键
	Status             string    `gorm:"size:32;not null;default:'completed'" json:"status"`               // 状态
	Description        string    `gorm:"type:text" json:"description"`                                     // 描述
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt          time.Time `json:"updated_at"`                                                       // 更新时间
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}

// SyncIdempotencyKey 根据状态与支付号同步幂等键
func (t *Transaction) SyncIdempotencyKey() {
	paymentID := strings.TrimSpace(t.PaymentID)
	if t.Status == constants.TransactionStatusCompleted && paymentID != "" {
		t.CompletedPaymentID = &paymentID
		return
	}
	t.CompletedPaymentID = nil
}

// BeforeSave 任何写入路径都同步幂等键
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.SyncIdempotencyKey()
	return nil
}
