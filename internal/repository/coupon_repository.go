package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	GetByPartnerToken(token string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	SetActive(id uint, active bool) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	ListWithoutPartnerToken() ([]models.Coupon, error)
	IncrementUsesGuarded(id uint) (int64, error)
	CountActive(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// NormalizeCode 优惠码去空格并转大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByID 根据ID获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据优惠码获取优惠券（不区分大小写）
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Where("UPPER(code) = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByPartnerToken 根据合作方令牌获取优惠券
func (r *GormCouponRepository) GetByPartnerToken(token string) (*models.Coupon, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Where("partner_token = ?", token).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// Update 更新优惠券
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	return r.db.Save(coupon).Error
}

// SetActive 启用或停用优惠券
func (r *GormCouponRepository) SetActive(id uint, active bool) error {
	return r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}

// List 获取优惠券列表，最新在前
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	if filter.Code != "" {
		query = query.Where("UPPER(code) = ?", NormalizeCode(filter.Code))
	}
	if filter.PartnerName != "" {
		query = query.Where("partner_name "+likeOperatorByDialect(dbDialectName(r.db))+" ?", "%"+strings.TrimSpace(filter.PartnerName)+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var coupons []models.Coupon
	if err := query.Order("created_at desc, id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// ListWithoutPartnerToken 获取尚未分配合作方令牌的优惠券
func (r *GormCouponRepository) ListWithoutPartnerToken() ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.Where("partner_token IS NULL OR partner_token = ''").Order("id asc").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// IncrementUsesGuarded 核销计数 +1，有上限时仅在未达上限时生效；返回受影响行数
func (r *GormCouponRepository) IncrementUsesGuarded(id uint) (int64, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		Where("max_uses IS NULL OR uses_count < max_uses").
		UpdateColumns(map[string]interface{}{
			"uses_count": gorm.Expr("uses_count + ?", 1),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// CountActive 统计当前可用优惠券数量
func (r *GormCouponRepository) CountActive(now time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Coupon{}).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("max_uses IS NULL OR uses_count < max_uses").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
