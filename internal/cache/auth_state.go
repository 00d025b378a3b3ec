package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// 鉴权主体类型
const (
	SubjectUser  = "user"
	SubjectAdmin = "admin"
)

// AuthState 令牌校验所需的主体快照，InvalidBefore 为 Unix 秒，0 表示未设置
type AuthState struct {
	Subject       string `json:"subject"`
	ID            uint   `json:"id"`
	Active        bool   `json:"active"`
	IsSuper       bool   `json:"is_super,omitempty"`
	TokenVersion  uint64 `json:"token_version"`
	InvalidBefore int64  `json:"invalid_before"`
}

// Accepts 令牌版本一致且签发时间不早于失效时间
func (s *AuthState) Accepts(tokenVersion uint64, issuedAt *time.Time) bool {
	if s == nil || s.TokenVersion != tokenVersion {
		return false
	}
	if s.InvalidBefore <= 0 {
		return true
	}
	return issuedAt != nil && issuedAt.Unix() >= s.InvalidBefore
}

func authStateKey(subject string, id uint) string {
	return fmt.Sprintf("auth:%s:%d", subject, id)
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

// UserAuthState 从用户模型构建快照
func UserAuthState(user *models.User) *AuthState {
	if user == nil {
		return nil
	}
	return &AuthState{
		Subject:       SubjectUser,
		ID:            user.ID,
		Active:        strings.EqualFold(strings.TrimSpace(user.Status), constants.UserStatusActive),
		TokenVersion:  user.TokenVersion,
		InvalidBefore: unixOrZero(user.TokenInvalidBefore),
	}
}

// AdminAuthState 从管理员模型构建快照
func AdminAuthState(admin *models.Admin) *AuthState {
	if admin == nil {
		return nil
	}
	return &AuthState{
		Subject:       SubjectAdmin,
		ID:            admin.ID,
		Active:        true,
		IsSuper:       admin.IsSuper,
		TokenVersion:  admin.TokenVersion,
		InvalidBefore: unixOrZero(admin.TokenInvalidBefore),
	}
}

// GetAuthState 读取主体快照
func GetAuthState(ctx context.Context, subject string, id uint) (*AuthState, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var state AuthState
	hit, err := GetJSON(ctx, authStateKey(subject, id), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAuthState 写入主体快照
func SetAuthState(ctx context.Context, state *AuthState) error {
	if state == nil || state.ID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(state.Subject, state.ID), state, authStateCacheTTL)
}
