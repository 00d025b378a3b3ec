package models

import (
	"time"
)

// CouponUsage 优惠券核销记录（每笔流水至多一条）
type CouponUsage struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	CouponID        uint      `gorm:"index;not null" json:"coupon_id"`                               // 优惠券ID
	UserID          uint      `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	TransactionID   uint      `gorm:"uniqueIndex;not null" json:"transaction_id"`                    // 关联流水ID
	DiscountApplied Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_applied"` // 实际优惠金额
	UsedAt          time.Time `gorm:"index;not null" json:"used_at"`                                 // 核销时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
