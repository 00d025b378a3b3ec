package shared

import (
	"github.com/cyberregistro/ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextUserIDKey       = "user_id"
	ContextAdminIDKey      = "admin_id"
	ContextAdminIsSuperKey = "admin_is_super"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			RespondError(c, response.CodeUnauthorized, invalidKey, nil)
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// ResolveActingUserID 令牌用户只能操作自己的 userId；请求未带 userId 时取令牌用户
func ResolveActingUserID(c *gin.Context, requested *uint) (uint, bool) {
	tokenUserID, ok := GetContextUintWithKeys(c, ContextUserIDKey, "error.user_id_invalid", "error.user_id_type_invalid")
	if !ok {
		return 0, false
	}
	if requested != nil && *requested != 0 && *requested != tokenUserID {
		RequestLog(c).Warnw("acting_user_mismatch", "token_user_id", tokenUserID, "requested_user_id", *requested)
		RespondError(c, response.CodeForbidden, "error.forbidden", nil)
		return 0, false
	}
	return tokenUserID, true
}
