package public

import "github.com/cyberregistro/ledger/internal/provider"

// Handler 用户侧与公开接口处理器入口
// 说明：该处理器仅用于用户、合作方与网关回调 API。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
