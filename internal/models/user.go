package models

import (
	"time"
)

// User 用户表（余额字段 credits 仅由账本服务修改）
type User struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                                                // 主键
	Name               string     `gorm:"not null;default:''" json:"name"`                                                     // 姓名
	Email              string     `gorm:"uniqueIndex;size:191;not null" json:"email"`                                          // 邮箱
	PasswordHash       string     `gorm:"not null" json:"-"`                                                                   // 密码哈希
	Credits            int64      `gorm:"not null;default:0;check:chk_users_credits_non_negative,credits >= 0" json:"credits"` // 预付积分余额
	Status             string     `gorm:"not null;default:'active'" json:"status"`                                             // 账号状态
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"`                                                         // Token 版本
	TokenInvalidBefore *time.Time `json:"-"`                                                                                   // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time `json:"last_login_at"`                                                                       // 最后登录时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                                             // 创建时间
	UpdatedAt          time.Time  `json:"updated_at"`                                                                          // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
