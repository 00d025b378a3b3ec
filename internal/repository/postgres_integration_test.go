//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := models.AllModels()
	_ = db.Migrator().DropTable(cleanupModels...)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentDebitNeverGoesNegative(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	user := createRepoTestUser(t, db, "pg_debit@example.com", 5)
	repo := NewUserRepository(db)

	var succeeded int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.AddCredits(user.ID, -1)
			if err != nil {
				t.Errorf("debit failed: %v", err)
				return
			}
			atomic.AddInt64(&succeeded, affected)
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Fatalf("expected exactly 5 debits to apply, got %d", succeeded)
	}
	reloaded, err := repo.GetByID(user.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.Credits != 0 {
		t.Fatalf("credits want 0 got %d", reloaded.Credits)
	}
}

func TestPostgresCompletedPaymentUniqueness(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	user := createRepoTestUser(t, db, "pg_payment@example.com", 0)
	repo := NewTransactionRepository(db)

	newTxn := func() *models.Transaction {
		return &models.Transaction{
			UserID:          user.ID,
			Kind:            constants.TransactionKindCreditPurchase,
			Amount:          models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			CreditsQuantity: 10,
			PaymentMethod:   constants.PaymentMethodPix,
			PaymentID:       "pay_pg_1",
			Status:          constants.TransactionStatusCompleted,
		}
	}
	if err := repo.Create(newTxn()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := repo.Create(newTxn())
	if err == nil {
		t.Fatalf("second completed transaction for the same payment must fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestPostgresCouponUsesRespectLimit(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	maxUses := 3
	coupon := &models.Coupon{
		Code:          "PGLIMIT",
		DiscountType:  constants.CouponTypeFixed,
		DiscountValue: models.NewMoneyFromInt(5),
		MaxUses:       &maxUses,
		IsActive:      true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	repo := NewCouponRepository(db)

	var applied int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.IncrementUsesGuarded(coupon.ID)
			if err != nil {
				t.Errorf("increment failed: %v", err)
				return
			}
			atomic.AddInt64(&applied, affected)
		}()
	}
	wg.Wait()

	if applied != int64(maxUses) {
		t.Fatalf("expected %d increments, got %d", maxUses, applied)
	}
	reloaded, err := repo.GetByID(coupon.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsesCount != maxUses {
		t.Fatalf("uses_count want %d got %d", maxUses, reloaded.UsesCount)
	}
}

func TestPostgresCouponSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	for _, name := range []string{"Loja Azul", "Revenda Verde"} {
		code := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
		if err := db.Create(&models.Coupon{Code: code, PartnerName: name, DiscountType: constants.CouponTypeFixed, DiscountValue: models.NewMoneyFromInt(1), IsActive: true}).Error; err != nil {
			t.Fatalf("create coupon failed: %v", err)
		}
	}
	items, total, err := NewCouponRepository(db).List(CouponListFilter{Page: 1, PageSize: 10, PartnerName: "azul"})
	if err != nil {
		t.Fatalf("list coupons failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 match, got total=%d len=%d", total, len(items))
	}
}
