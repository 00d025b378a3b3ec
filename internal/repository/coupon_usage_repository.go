package repository

import (
	"errors"

	"github.com/cyberregistro/ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponUsageRepository 优惠券核销记录数据访问接口
type CouponUsageRepository interface {
	Create(usage *models.CouponUsage) error
	GetByTransactionID(transactionID uint) (*models.CouponUsage, error)
	CountByCoupon(couponID uint) (int64, error)
	SumDiscountByCoupon(couponID uint) (decimal.Decimal, error)
	ListRecentByCoupon(couponID uint, limit int) ([]models.CouponUsage, error)
	WithTx(tx *gorm.DB) *GormCouponUsageRepository
}

// GormCouponUsageRepository GORM 实现
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 创建核销记录仓库
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) *GormCouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// Create 创建核销记录
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) error {
	return r.db.Create(usage).Error
}

// GetByTransactionID 获取流水关联的核销记录
func (r *GormCouponUsageRepository) GetByTransactionID(transactionID uint) (*models.CouponUsage, error) {
	var usage models.CouponUsage
	if err := r.db.Where("transaction_id = ?", transactionID).First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// CountByCoupon 优惠券核销次数
func (r *GormCouponUsageRepository) CountByCoupon(couponID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).Where("coupon_id = ?", couponID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumDiscountByCoupon 优惠券累计优惠金额
func (r *GormCouponUsageRepository) SumDiscountByCoupon(couponID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ?", couponID).
		Select("SUM(discount_applied)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

// ListRecentByCoupon 最近的核销记录，最新在前
func (r *GormCouponUsageRepository) ListRecentByCoupon(couponID uint, limit int) ([]models.CouponUsage, error) {
	query := r.db.Where("coupon_id = ?", couponID).Order("used_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var usages []models.CouponUsage
	if err := query.Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}
