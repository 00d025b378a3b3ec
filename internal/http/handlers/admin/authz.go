package admin

import (
	"errors"

	"github.com/cyberregistro/ledger/internal/authz"
	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
)

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前管理员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_unavailable", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_unavailable", err)
		return
	}

	response.OK(c, gin.H{
		"admin_id": adminID,
		"is_super": currentAdminIsSuper(c),
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 角色及其策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_unavailable", err)
		return
	}
	items := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.GetRolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_unavailable", err)
			return
		}
		items = append(items, gin.H{
			"role":     role,
			"policies": policies,
		})
	}
	response.OK(c, gin.H{"roles": items})
}

// GetAdminRoles 查询指定管理员角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	adminID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if _, err := h.AuthService.GetAdmin(adminID); err != nil {
		respondAdminLookupError(c, err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_unavailable", err)
		return
	}
	response.OK(c, gin.H{"admin_id": adminID, "roles": roles})
}

// SetAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	adminID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if _, err := h.AuthService.GetAdmin(adminID); err != nil {
		respondAdminLookupError(c, err)
		return
	}

	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		if errors.Is(err, authz.ErrRoleNotFound) {
			respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
			return
		}
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_unavailable", err)
		return
	}
	operatorID, _ := c.Get(handlershared.ContextAdminIDKey)
	requestLog(c).Infow("admin_authz_roles_updated",
		"operator_admin_id", operatorID,
		"target_admin_id", adminID,
		"roles", roles,
	)
	response.OK(c, gin.H{"admin_id": adminID, "roles": roles})
}

func respondAdminLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	respondError(c, response.CodeInternal, "error.internal", err)
}
