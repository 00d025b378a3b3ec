package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const maxCouponCodeLength = 32

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo repository.CouponRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code          string
	PartnerName   string
	DiscountType  string
	DiscountValue decimal.Decimal
	MaxUses       *int
	ExpiresAt     *time.Time
}

// CouponImportResult 批量导入结果
type CouponImportResult struct {
	Created []string
	Skipped []string
}

// List 优惠券列表，最新在前
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CreateCouponInput) (*models.Coupon, error) {
	code := effectiveCouponCode(input)
	partnerName := strings.TrimSpace(input.PartnerName)
	if code == "" || len(code) > maxCouponCodeLength {
		return nil, fmt.Errorf("%w: code", ErrCouponInvalid)
	}

	discountType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	if discountType != constants.CouponTypePercentage && discountType != constants.CouponTypeFixed {
		return nil, fmt.Errorf("%w: discount_type", ErrCouponInvalid)
	}
	if !input.DiscountValue.IsPositive() {
		return nil, fmt.Errorf("%w: discount_value", ErrCouponInvalid)
	}
	if discountType == constants.CouponTypePercentage && input.DiscountValue.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: percentage above 100", ErrCouponInvalid)
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return nil, fmt.Errorf("%w: max_uses", ErrCouponInvalid)
	}

	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCouponCodeExists
	}

	token := uuid.NewString()
	coupon := &models.Coupon{
		Code:          code,
		PartnerName:   partnerName,
		DiscountType:  discountType,
		DiscountValue: models.NewMoneyFromDecimal(input.DiscountValue),
		MaxUses:       input.MaxUses,
		UsesCount:     0,
		ExpiresAt:     input.ExpiresAt,
		IsActive:      true,
		PartnerToken:  &token,
	}
	if err := s.repo.Create(coupon); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCouponCodeExists
		}
		return nil, err
	}
	logger.Infow("coupon_created",
		"coupon_id", coupon.ID,
		"code", coupon.Code,
		"discount_type", coupon.DiscountType,
		"discount_value", coupon.DiscountValue.String(),
	)
	return coupon, nil
}

// SetActive 启用或停用优惠券（不删除）
func (s *CouponAdminService) SetActive(id uint, active bool) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCouponNotFound
	}
	if err := s.repo.SetActive(id, active); err != nil {
		return nil, err
	}
	logger.Infow("coupon_active_changed", "coupon_id", id, "is_active", active)
	return s.repo.GetByID(id)
}

// BackfillPartnerTokens 为历史优惠券补发合作方令牌，返回处理数量
func (s *CouponAdminService) BackfillPartnerTokens() (int, error) {
	coupons, err := s.repo.ListWithoutPartnerToken()
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range coupons {
		token := uuid.NewString()
		coupons[i].PartnerToken = &token
		if err := s.repo.Update(&coupons[i]); err != nil {
			return updated, fmt.Errorf("backfill coupon %d: %w", coupons[i].ID, err)
		}
		updated++
	}
	if updated > 0 {
		logger.Infow("coupon_partner_tokens_backfilled", "count", updated)
	}
	return updated, nil
}

// Import 批量导入，已存在的优惠码跳过
func (s *CouponAdminService) Import(inputs []CreateCouponInput) (*CouponImportResult, error) {
	result := &CouponImportResult{}
	for _, input := range inputs {
		coupon, err := s.Create(input)
		if errors.Is(err, ErrCouponCodeExists) {
			result.Skipped = append(result.Skipped, effectiveCouponCode(input))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("import coupon %q: %w", input.Code, err)
		}
		result.Created = append(result.Created, coupon.Code)
	}
	return result, nil
}

// effectiveCouponCode 未填优惠码时由合作方名称生成
func effectiveCouponCode(input CreateCouponInput) string {
	code := repository.NormalizeCode(input.Code)
	if code == "" {
		if partnerName := strings.TrimSpace(input.PartnerName); partnerName != "" {
			code = DeriveCouponCode(partnerName)
		}
	}
	return code
}

// DeriveCouponCode 由合作方名称生成优惠码
func DeriveCouponCode(partnerName string) string {
	code := strings.ToUpper(strings.ReplaceAll(slug.Make(partnerName), "-", ""))
	if len(code) > maxCouponCodeLength {
		code = code[:maxCouponCodeLength]
	}
	return code
}

// ParseCouponExpiry 解析过期时间，支持 RFC3339 与 YYYY-MM-DD（UTC 零点）
func ParseCouponExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: expires_at", ErrCouponInvalid)
	}
	return &t, nil
}
