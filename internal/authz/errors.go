package authz

import "errors"

var (
	// ErrRoleNotFound 分配了未定义的角色
	ErrRoleNotFound       = errors.New("authz role not found")
	ErrRoleRequired       = errors.New("authz role is required")
	ErrRoleReserved       = errors.New("authz role is reserved")
	ErrActionRequired     = errors.New("authz action is required")
	ErrAdminIDRequired    = errors.New("admin id is required")
	ErrServiceUnavailable = errors.New("authz service unavailable")
)
