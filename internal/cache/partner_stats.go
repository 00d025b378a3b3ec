package cache

import (
	"context"
	"strings"
	"time"
)

func partnerStatsKey(token string) string {
	return "partner:coupon:" + strings.TrimSpace(token)
}

// GetPartnerStats 读取合作方看板缓存
func GetPartnerStats(ctx context.Context, token string, dest interface{}) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	return GetJSON(ctx, partnerStatsKey(token), dest)
}

// SetPartnerStats 写入合作方看板缓存
func SetPartnerStats(ctx context.Context, token string, value interface{}, ttl time.Duration) error {
	if strings.TrimSpace(token) == "" || ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, partnerStatsKey(token), value, ttl)
}

// DelPartnerStats 核销后失效合作方看板缓存
func DelPartnerStats(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return Del(ctx, partnerStatsKey(token))
}
