package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("support", "/cupons/:id", "PATCH"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"support"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/cupons/42", "patch")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/cupons/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{RoleCouponManager}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:coupon_manager" {
		t.Fatalf("roles want [role:coupon_manager], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{RoleLedgerOperator}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:ledger_operator" {
		t.Fatalf("roles want [role:ledger_operator], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/cupons", "POST")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/credits/add", "POST")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestSetAdminRolesRejectsUnknownRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	err := svc.SetAdminRoles(5, []string{"ghost"})
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got=%v", err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/cupons/:id", want: "/cupons/:id"},
		{in: "/cupons/", want: "/cupons"},
		{in: "admin/dashboard", want: "/admin/dashboard"},
		{in: " /credits/add ", want: "/credits/add"},
		{in: "/", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:coupon_manager":   true,
		"role:ledger_operator":  true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{RoleCouponManager}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		obj   string
		act   string
		allow bool
	}{
		{obj: "/admin/dashboard", act: "GET", allow: true},
		{obj: "/cupons", act: "POST", allow: true},
		{obj: "/cupons/9", act: "PATCH", allow: true},
		{obj: "/credits/add", act: "POST", allow: false},
		{obj: "/admin/authz/admins/1/roles", act: "PUT", allow: false},
	}
	for _, item := range cases {
		allow, err := svc.EnforceAdmin(3, item.obj, item.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", item.act, item.obj, err)
		}
		if allow != item.allow {
			t.Fatalf("enforce %s %s want=%v got=%v", item.act, item.obj, item.allow, allow)
		}
	}

	policies, err := svc.GetAdminPolicies(3)
	if err != nil {
		t.Fatalf("get admin policies failed: %v", err)
	}
	if len(policies) < 4 {
		t.Fatalf("expected inherited policies, got=%v", policies)
	}
}

func TestServiceErrors(t *testing.T) {
	var missing *Service
	if _, err := missing.EnforceAdmin(1, "/cupons", "GET"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("nil service want ErrServiceUnavailable, got=%v", err)
	}

	svc := setupAuthzServiceTest(t)
	if _, err := svc.EnforceAdmin(0, "/cupons", "GET"); !errors.Is(err, ErrAdminIDRequired) {
		t.Fatalf("zero admin want ErrAdminIDRequired, got=%v", err)
	}
	if _, err := svc.EnsureRole("__anchor__"); !errors.Is(err, ErrRoleReserved) {
		t.Fatalf("anchor role want ErrRoleReserved, got=%v", err)
	}
	if err := svc.GrantRolePolicy("support", "/cupons", " "); !errors.Is(err, ErrActionRequired) {
		t.Fatalf("blank action want ErrActionRequired, got=%v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"role:"}); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("blank role want ErrRoleRequired, got=%v", err)
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"coupon_manager":      "role:coupon_manager",
		"role:coupon_manager": "role:coupon_manager",
		" ledger operator ":   "role:ledger_operator",
	}
	for in, want := range cases {
		got, err := NormalizeRole(in)
		if err != nil || got != want {
			t.Fatalf("normalize role %q want=%q got=%q err=%v", in, want, got, err)
		}
	}
}
