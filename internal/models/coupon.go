package models

import (
	"time"
)

// Coupon 优惠券（只停用不删除）
type Coupon struct {
	ID            uint       `gorm:"primarykey" json:"id"`                               // 主键
	Code          string     `gorm:"uniqueIndex;size:64;not null" json:"code"`           // 优惠码（大写存储）
	PartnerName   string     `gorm:"size:191;not null;default:''" json:"partner_name"`   // 合作方名称
	DiscountType  string     `gorm:"size:16;not null" json:"discount_type"`              // 折扣类型（percentage/fixed）
	DiscountValue Money      `gorm:"type:decimal(20,2);not null" json:"discount_value"`  // 折扣数值
	MaxUses       *int       `json:"max_uses"`                                           // 总使用上限（nil 表示不限）
	UsesCount     int        `gorm:"not null;default:0" json:"uses_count"`               // 已核销次数
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at"`                            // 过期时间
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`             // 是否启用
	PartnerToken  *string    `gorm:"size:36;uniqueIndex" json:"partner_token,omitempty"` // 合作方看板令牌
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
