package repository

import "time"

// TransactionListFilter 查询积分流水的过滤条件
type TransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Kind        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponListFilter 优惠券列表筛选
type CouponListFilter struct {
	Page        int
	PageSize    int
	Code        string
	PartnerName string
	IsActive    *bool
}
