package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCLITest(t *testing.T) (*env, *bytes.Buffer) {
	t.Helper()
	dsn := fmt.Sprintf("file:cli_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	out := &bytes.Buffer{}
	e := &env{
		cfg: &config.Config{Security: config.SecurityConfig{PasswordPolicy: config.PasswordPolicyConfig{MinLength: 6}}},
		db:  db,
		out: out,
	}
	require.NoError(t, e.migrate())
	out.Reset()
	return e, out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const couponFixture = `
[[coupon]]
code = "parceiro10"
partner_name = "Loja Parceira"
discount_type = "percentage"
discount_value = "10"
max_uses = 100
expires_at = "2099-12-31"

[[coupon]]
partner_name = "Revenda São Paulo"
discount_type = "fixed"
discount_value = "5.50"
`

func TestImportCoupons(t *testing.T) {
	e, out := setupCLITest(t)
	path := writeFile(t, "coupons.toml", couponFixture)

	require.NoError(t, e.importCoupons(path))
	assert.Contains(t, out.String(), "created 2, skipped 0")

	var coupons []models.Coupon
	require.NoError(t, e.db.Order("id asc").Find(&coupons).Error)
	require.Len(t, coupons, 2)
	assert.Equal(t, "PARCEIRO10", coupons[0].Code)
	require.NotNil(t, coupons[0].MaxUses)
	assert.Equal(t, 100, *coupons[0].MaxUses)
	require.NotNil(t, coupons[0].ExpiresAt)
	assert.Equal(t, "REVENDASAOPAULO", coupons[1].Code)
	assert.Equal(t, "5.50", coupons[1].DiscountValue.String())

	out.Reset()
	require.NoError(t, e.importCoupons(path))
	assert.Contains(t, out.String(), "created 0, skipped 2")
}

func TestImportCouponsRejectsBadFile(t *testing.T) {
	e, _ := setupCLITest(t)

	unknown := writeFile(t, "unknown.toml", "[[coupon]]\ncode = \"X\"\ndiscount_type = \"fixed\"\ndiscount_value = \"1\"\ncolour = \"red\"\n")
	err := e.importCoupons(unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")

	badValue := writeFile(t, "bad.toml", "[[coupon]]\ncode = \"X\"\ndiscount_type = \"fixed\"\ndiscount_value = \"ten\"\n")
	err = e.importCoupons(badValue)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discount_value")

	var count int64
	require.NoError(t, e.db.Model(&models.Coupon{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBackfillTokens(t *testing.T) {
	e, out := setupCLITest(t)
	require.NoError(t, e.db.Create(&models.Coupon{Code: "ANTIGO", DiscountType: constants.CouponTypeFixed, DiscountValue: models.NewMoneyFromInt(5), IsActive: true}).Error)

	require.NoError(t, e.backfillTokens())
	assert.Contains(t, out.String(), "partner tokens issued: 1")

	var coupon models.Coupon
	require.NoError(t, e.db.Where("code = ?", "ANTIGO").First(&coupon).Error)
	require.NotNil(t, coupon.PartnerToken)
	assert.Len(t, *coupon.PartnerToken, 36)

	out.Reset()
	require.NoError(t, e.backfillTokens())
	assert.Contains(t, out.String(), "partner tokens issued: 0")
}

func TestGrantCredits(t *testing.T) {
	e, out := setupCLITest(t)
	require.NoError(t, e.db.Create(&models.User{ID: 9, Name: "Seller 9", Email: "seller_9@example.com", PasswordHash: "hash", Credits: 1, Status: constants.UserStatusActive}).Error)

	require.NoError(t, e.grantCredits(9, 4, "bonus"))
	assert.Contains(t, out.String(), "user 9: 1 -> 5 (+4)")

	var txn models.Transaction
	require.NoError(t, e.db.Where("user_id = ?", 9).First(&txn).Error)
	assert.Equal(t, int64(4), txn.CreditsQuantity)
	assert.Equal(t, "bonus", txn.Description)

	assert.Error(t, e.grantCredits(9, 0, ""))
	assert.Error(t, e.grantCredits(404, 1, ""))
}

func TestCreateAdminWithRole(t *testing.T) {
	e, out := setupCLITest(t)

	require.NoError(t, e.createAdmin("auditor", "segredo1", []string{"readonly_auditor"}, false))
	assert.Contains(t, out.String(), `admin "auditor" created`)
	assert.Contains(t, out.String(), "role:readonly_auditor")

	err := e.createAdmin("ghost", "segredo1", []string{"nope"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assign roles")

	assert.Error(t, e.createAdmin("auditor", "segredo1", nil, false))
	assert.Error(t, e.createAdmin("weak", "abc", nil, false))
}

func TestCreditsGrantCommand(t *testing.T) {
	e, out := setupCLITest(t)
	require.NoError(t, e.db.Create(&models.User{ID: 3, Name: "Seller 3", Email: "seller_3@example.com", PasswordHash: "hash", Status: constants.UserStatusActive}).Error)
	current = e
	t.Cleanup(func() { current = nil })

	rootCmd.SetArgs([]string{"credits", "grant", "--user", "3", "--amount", "7"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "user 3: 0 -> 7 (+7)")
}
