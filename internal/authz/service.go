package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
	// roleAnchor 角色以 g(role, anchor) 登记，便于枚举未分配给任何人的角色
	roleAnchor = "role:__anchor__"
)

// 管理端路由按 gin 路由模板授权，:id 之类的参数由 keyMatch2 匹配
const adminRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy 权限策略
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 管理员角色授权，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db is nil", ErrServiceUnavailable)
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter: %w", err)
	}
	m, err := model.NewModelFromString(adminRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrServiceUnavailable
	}
	return nil
}

// EnforceAdmin 判断管理员能否以 act 访问路由模板 obj
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if adminID == 0 {
		return false, ErrAdminIDRequired
	}
	return s.enforcer.Enforce(adminSubject(adminID), NormalizeObject(obj), NormalizeAction(act))
}

// EnsureRole 登记角色，已存在时直接返回规范名
func (s *Service) EnsureRole(role string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", ErrRoleReserved
	}
	exists, err := s.roleExists(normalized)
	if err != nil || exists {
		return normalized, err
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
		return "", fmt.Errorf("create role %s: %w", normalized, err)
	}
	return normalized, nil
}

// ListRoles 列出全部已登记角色
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 1, roleAnchor)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) > 0 {
			roles = append(roles, rule[0])
		}
	}
	return visibleRoles(roles), nil
}

// GrantRolePolicy 为角色授予一条策略，角色不存在时先登记
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return ErrActionRequired
	}
	if _, err := s.enforcer.AddPolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("grant %s %s to %s: %w", normalizedAction, object, normalizedRole, err)
	}
	return nil
}

// GetRolePolicies 角色自身的策略（不含继承）
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	normalized, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, normalized)
	if err != nil {
		return nil, fmt.Errorf("get policies of %s: %w", normalized, err)
	}
	return toPolicies(rules), nil
}

// SetAdminRoles 覆盖管理员角色；任一角色未登记则整体拒绝
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if adminID == 0 {
		return ErrAdminIDRequired
	}
	normalizedRoles := make([]string, 0, len(roles))
	for _, role := range roles {
		normalized, err := NormalizeRole(role)
		if err != nil {
			return err
		}
		exists, err := s.roleExists(normalized)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrRoleNotFound, normalized)
		}
		normalizedRoles = append(normalizedRoles, normalized)
	}

	subject := adminSubject(adminID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear roles of %s: %w", subject, err)
	}
	for _, role := range normalizedRoles {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, role); err != nil {
			return fmt.Errorf("assign %s to %s: %w", role, subject, err)
		}
	}
	return nil
}

// GetAdminRoles 管理员直接持有的角色
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	roles, err := s.enforcer.GetRolesForUser(adminSubject(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles: %w", err)
	}
	return visibleRoles(roles), nil
}

// GetAdminPolicies 管理员生效策略（含继承角色），按资源与动作排序
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	rules, err := s.enforcer.GetImplicitPermissionsForUser(adminSubject(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin policies: %w", err)
	}
	policies := toPolicies(rules)
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object == policies[j].Object {
			return policies[i].Action < policies[j].Action
		}
		return policies[i].Object < policies[j].Object
	})
	return policies, nil
}

func (s *Service) roleExists(role string) (bool, error) {
	exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
	if err != nil {
		return false, fmt.Errorf("check role %s: %w", role, err)
	}
	return exists, nil
}

// visibleRoles 去掉锚点与非角色主体，去重排序
func visibleRoles(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	roles := make([]string, 0, len(items))
	for _, item := range items {
		if !strings.HasPrefix(item, rolePrefix) || item == roleAnchor {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		roles = append(roles, item)
	}
	sort.Strings(roles)
	return roles
}

func toPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

func adminSubject(adminID uint) string {
	return fmt.Sprintf("admin:%d", adminID)
}

// NormalizeRole 角色名统一带 role: 前缀，空格替换为下划线
func NormalizeRole(role string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	normalized = strings.TrimPrefix(normalized, rolePrefix)
	if normalized == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + normalized, nil
}

// NormalizeObject 资源路径补前导斜杠并去掉末尾斜杠
func NormalizeObject(object string) string {
	normalized := strings.TrimRight(strings.TrimSpace(object), "/")
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return normalized
}

// NormalizeAction 统一授权动作
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
