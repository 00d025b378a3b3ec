package public

import (
	"errors"

	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ValidateCouponRequest 优惠券试算请求
type ValidateCouponRequest struct {
	Code  string          `json:"code"`
	Total decimal.Decimal `json:"total"`
}

// ValidateCoupon 校验优惠券并返回折后金额，不占用次数
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithData(c, response.CodeBadRequest, "error.bad_request", gin.H{"valid": false})
		return
	}

	quote, err := h.CouponService.Validate(req.Code, req.Total)
	if err != nil {
		respondWithMappedErrorData(c, err, couponValidateErrorRules, gin.H{"valid": false}, response.CodeInternal, "error.internal")
		return
	}
	response.OK(c, gin.H{
		"valid": true,
		"cupom": gin.H{
			"id":             quote.Coupon.ID,
			"code":           quote.Coupon.Code,
			"discount_type":  quote.Coupon.DiscountType,
			"discount_value": quote.Coupon.DiscountValue,
		},
		"discount":   models.NewMoneyFromDecimal(quote.Discount),
		"finalTotal": models.NewMoneyFromDecimal(quote.FinalTotal),
	})
}

// GetPartnerCouponStats 合作方看板（令牌访问，无需登录）
func (h *Handler) GetPartnerCouponStats(c *gin.Context) {
	stats, err := h.CouponService.PartnerStats(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerTokenEmpty):
			respondError(c, response.CodeBadRequest, "error.partner_token_invalid", nil)
		case errors.Is(err, service.ErrCouponNotFound):
			respondError(c, response.CodeNotFound, "error.coupon_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.partner_stats_failed", err)
		}
		return
	}
	response.OK(c, stats)
}
