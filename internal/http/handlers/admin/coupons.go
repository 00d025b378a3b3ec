package admin

import (
	"errors"
	"strings"

	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code          string          `json:"code"`
	PartnerName   string          `json:"partner_name"`
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxUses       *int            `json:"max_uses"`
	ExpiresAt     string          `json:"expires_at"`
}

// UpdateCouponRequest 启停优惠券请求
type UpdateCouponRequest struct {
	IsActive *bool `json:"is_active"`
}

// ListCoupons 优惠券列表，最新在前
func (h *Handler) ListCoupons(c *gin.Context) {
	query := handlershared.ParsePageQuery(c)
	filter := repository.CouponListFilter{
		Page:        query.Page,
		PageSize:    query.PageSize,
		Code:        strings.TrimSpace(c.Query("code")),
		PartnerName: strings.TrimSpace(c.Query("partner_name")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	coupons, total, err := h.CouponAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_list_failed", err)
		return
	}
	response.OK(c, gin.H{
		"cupons":     coupons,
		"pagination": response.NewPagination(query.Page, query.PageSize, total),
	})
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	expiresAt, err := service.ParseCouponExpiry(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		return
	}

	coupon, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Code:          req.Code,
		PartnerName:   req.PartnerName,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponCodeExists):
			respondError(c, response.CodeConflict, "error.coupon_code_exists", nil)
		case errors.Is(err, service.ErrCouponInvalid):
			respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.coupon_create_failed", err)
		}
		return
	}
	if adminID, ok := c.Get(handlershared.ContextAdminIDKey); ok {
		requestLog(c).Infow("admin_coupon_created", "admin_id", adminID, "coupon_id", coupon.ID, "code", coupon.Code)
	}
	response.Created(c, gin.H{
		"success": true,
		"cupom":   coupon,
	})
}

// UpdateCoupon 启用或停用优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respondError(c, response.CodeBadRequest, "error.coupon_active_invalid", nil)
		return
	}

	coupon, err := h.CouponAdminService.SetActive(id, *req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			respondError(c, response.CodeNotFound, "error.coupon_not_found", nil)
		case errors.Is(err, service.ErrCouponInvalid):
			respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.coupon_update_failed", err)
		}
		return
	}
	response.OK(c, gin.H{
		"success": true,
		"cupom":   coupon,
	})
}
