// Package reference 解析与生成支付网关的 externalReference。
//
// 格式：user_<id>_<unixms>_qty<n>[_cupom<id>]，解析时各段顺序与位置不限。
package reference

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrMissingUser externalReference 中缺少 user_<id>_
	ErrMissingUser = errors.New("external reference has no user token")
)

var (
	userPattern           = regexp.MustCompile(`(?i)user_(\d+)_`)
	quantityPattern       = regexp.MustCompile(`(?i)qty(\d+)`)
	descriptionQtyPattern = regexp.MustCompile(`(?i)(\d+)\s*cr`)
	couponPattern         = regexp.MustCompile(`(?i)cupom(\d+)`)
)

// Reference 从 externalReference 还原的业务上下文
type Reference struct {
	UserID   uint
	Quantity int64
	CouponID *uint
}

// Parse 解析 externalReference，description 用于数量回退
func Parse(externalReference, description string) (Reference, error) {
	match := userPattern.FindStringSubmatch(externalReference)
	if match == nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrMissingUser, externalReference)
	}
	userID, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil || userID == 0 {
		return Reference{}, fmt.Errorf("%w: %q", ErrMissingUser, externalReference)
	}

	ref := Reference{
		UserID:   uint(userID),
		Quantity: extractQuantity(externalReference, description),
	}
	if m := couponPattern.FindStringSubmatch(externalReference); m != nil {
		if id, err := strconv.ParseUint(m[1], 10, 64); err == nil && id > 0 {
			couponID := uint(id)
			ref.CouponID = &couponID
		}
	}
	return ref, nil
}

func extractQuantity(externalReference, description string) int64 {
	if qty := positiveMatch(quantityPattern, externalReference); qty > 0 {
		return qty
	}
	if qty := positiveMatch(descriptionQtyPattern, description); qty > 0 {
		return qty
	}
	return 1
}

func positiveMatch(pattern *regexp.Regexp, s string) int64 {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Build 生成 externalReference
func Build(userID uint, quantity int64, couponID *uint, now time.Time) string {
	ref := fmt.Sprintf("user_%d_%d_qty%d", userID, now.UnixMilli(), quantity)
	if couponID != nil && *couponID > 0 {
		ref += fmt.Sprintf("_cupom%d", *couponID)
	}
	return ref
}
