package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/cache"
	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/metrics"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const partnerRecentUsageLimit = 100

var hundred = decimal.NewFromInt(100)

// CouponService 优惠券校验与核销服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
	statsTTL   time.Duration
	now        func() time.Time
}

// CouponQuote 优惠券试算结果
type CouponQuote struct {
	Coupon     *models.Coupon
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	FinalTotal decimal.Decimal
}

// PartnerCouponView 合作方看板中的优惠券信息
type PartnerCouponView struct {
	ID            uint         `json:"id"`
	Code          string       `json:"code"`
	PartnerName   string       `json:"partner_name"`
	DiscountType  string       `json:"discount_type"`
	DiscountValue models.Money `json:"discount_value"`
	MaxUses       *int         `json:"max_uses"`
	UsesCount     int          `json:"uses_count"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
}

// PartnerUsageItem 核销明细
type PartnerUsageItem struct {
	UsedAt          time.Time    `json:"used_at"`
	DiscountApplied models.Money `json:"discount_applied"`
}

// PartnerStats 核销统计
type PartnerStats struct {
	TotalUses     int                `json:"total_uses"`
	TotalDiscount models.Money       `json:"total_discount"`
	RecentUsage   []PartnerUsageItem `json:"recent_usage"`
}

// PartnerCouponStats 合作方看板数据
type PartnerCouponStats struct {
	Coupon PartnerCouponView `json:"cupom"`
	Stats  PartnerStats      `json:"stats"`
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository, statsTTL time.Duration) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		statsTTL:   statsTTL,
		now:        time.Now,
	}
}

// Validate 校验优惠券并试算折扣，不占用次数
func (s *CouponService) Validate(code string, subtotal decimal.Decimal) (*CouponQuote, error) {
	quote, err := s.validate(code, subtotal)
	metrics.CouponValidations.WithLabelValues(couponValidationResult(err)).Inc()
	return quote, err
}

func (s *CouponService) validate(code string, subtotal decimal.Decimal) (*CouponQuote, error) {
	if repository.NormalizeCode(code) == "" {
		return nil, ErrCouponInvalid
	}
	if !subtotal.IsPositive() {
		return nil, ErrInvalidSubtotal
	}

	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.ExpiresAt != nil && s.now().After(*coupon.ExpiresAt) {
		return nil, ErrCouponExpired
	}
	if coupon.MaxUses != nil && coupon.UsesCount >= *coupon.MaxUses {
		return nil, ErrCouponUsageLimit
	}

	discount := calculateDiscount(coupon, subtotal)
	return &CouponQuote{
		Coupon:     coupon,
		Subtotal:   subtotal.Round(2),
		Discount:   discount,
		FinalTotal: subtotal.Sub(discount).Round(2),
	}, nil
}

// RedeemInTx 在支付入账事务内记录核销并累加次数，失败时由调用方回滚整笔入账
func (s *CouponService) RedeemInTx(tx *gorm.DB, couponID, userID, transactionID uint, amountPaid decimal.Decimal) (*models.CouponUsage, error) {
	if tx == nil {
		return nil, errors.New("redeem requires a transaction")
	}
	couponRepo := s.couponRepo.WithTx(tx)
	coupon, err := couponRepo.GetByID(couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	usage := &models.CouponUsage{
		CouponID:        coupon.ID,
		UserID:          userID,
		TransactionID:   transactionID,
		DiscountApplied: models.NewMoneyFromDecimal(backComputeDiscount(coupon, amountPaid)),
		UsedAt:          s.now(),
	}
	if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCouponRedeemed
		}
		return nil, err
	}

	affected, err := couponRepo.IncrementUsesGuarded(coupon.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCouponUsageLimit
	}
	return usage, nil
}

// PartnerStats 合作方看板统计（按令牌，不暴露优惠券 ID）
func (s *CouponService) PartnerStats(ctx context.Context, token string) (*PartnerCouponStats, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrPartnerTokenEmpty
	}

	var cached PartnerCouponStats
	if hit, err := cache.GetPartnerStats(ctx, token, &cached); err != nil {
		logger.Warnw("partner_stats_cache_get_failed", "error", err)
	} else if hit {
		return &cached, nil
	}

	coupon, err := s.couponRepo.GetByPartnerToken(token)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	totalDiscount, err := s.usageRepo.SumDiscountByCoupon(coupon.ID)
	if err != nil {
		return nil, err
	}
	usages, err := s.usageRepo.ListRecentByCoupon(coupon.ID, partnerRecentUsageLimit)
	if err != nil {
		return nil, err
	}

	recent := make([]PartnerUsageItem, 0, len(usages))
	for _, usage := range usages {
		recent = append(recent, PartnerUsageItem{
			UsedAt:          usage.UsedAt,
			DiscountApplied: usage.DiscountApplied,
		})
	}
	stats := &PartnerCouponStats{
		Coupon: PartnerCouponView{
			ID:            coupon.ID,
			Code:          coupon.Code,
			PartnerName:   coupon.PartnerName,
			DiscountType:  coupon.DiscountType,
			DiscountValue: coupon.DiscountValue,
			MaxUses:       coupon.MaxUses,
			UsesCount:     coupon.UsesCount,
			ExpiresAt:     coupon.ExpiresAt,
			IsActive:      coupon.IsActive,
			CreatedAt:     coupon.CreatedAt,
		},
		Stats: PartnerStats{
			TotalUses:     coupon.UsesCount,
			TotalDiscount: models.NewMoneyFromDecimal(totalDiscount),
			RecentUsage:   recent,
		},
	}
	if err := cache.SetPartnerStats(ctx, token, stats, s.statsTTL); err != nil {
		logger.Warnw("partner_stats_cache_set_failed", "coupon_id", coupon.ID, "error", err)
	}
	return stats, nil
}

// InvalidatePartnerStats 核销后清理看板缓存
func (s *CouponService) InvalidatePartnerStats(ctx context.Context, couponID uint) error {
	coupon, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return err
	}
	if coupon == nil || coupon.PartnerToken == nil {
		return nil
	}
	return cache.DelPartnerStats(ctx, *coupon.PartnerToken)
}

// calculateDiscount 试算折扣，不超过小计
func calculateDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case constants.CouponTypePercentage:
		discount = subtotal.Mul(coupon.DiscountValue.Decimal).Div(hundred)
	case constants.CouponTypeFixed:
		discount = coupon.DiscountValue.Decimal
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

// backComputeDiscount 由实付金额反推折扣：网关金额若已四舍五入，结果只是估算值
func backComputeDiscount(coupon *models.Coupon, amountPaid decimal.Decimal) decimal.Decimal {
	value := coupon.DiscountValue.Decimal
	switch coupon.DiscountType {
	case constants.CouponTypePercentage:
		if value.GreaterThanOrEqual(hundred) {
			logger.Warnw("coupon_back_compute_unbounded",
				"coupon_id", coupon.ID,
				"discount_value", value.String(),
				"amount_paid", amountPaid.String(),
			)
			return decimal.Zero
		}
		ratio := decimal.NewFromInt(1).Sub(value.Div(hundred))
		subtotal := amountPaid.DivRound(ratio, 8)
		return subtotal.Sub(amountPaid).Round(2)
	case constants.CouponTypeFixed:
		return value.Round(2)
	default:
		return decimal.Zero
	}
}

func couponValidationResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrCouponInactive):
		return "inactive"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrCouponUsageLimit):
		return "usage_limit"
	case errors.Is(err, ErrCouponInvalid), errors.Is(err, ErrInvalidSubtotal):
		return "invalid"
	default:
		return "error"
	}
}
