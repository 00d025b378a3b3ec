package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createRepoTestUser(t *testing.T, db *gorm.DB, email string, credits int64) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Seller",
		Email:        email,
		PasswordHash: "hash",
		Credits:      credits,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestTransactionIdempotencyKeySyncedOnDirectWrites(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	user := createRepoTestUser(t, db, "hook_txn@example.com", 0)

	pending := &models.Transaction{
		UserID:          user.ID,
		Kind:            constants.TransactionKindCreditPurchase,
		CreditsQuantity: 1,
		PaymentID:       "pay_hook",
		Status:          "pending",
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("create pending transaction failed: %v", err)
	}
	if pending.CompletedPaymentID != nil {
		t.Fatalf("pending transaction must not carry idempotency key, got %v", *pending.CompletedPaymentID)
	}

	pending.Status = constants.TransactionStatusCompleted
	if err := db.Save(pending).Error; err != nil {
		t.Fatalf("save completed transaction failed: %v", err)
	}
	var stored models.Transaction
	if err := db.First(&stored, pending.ID).Error; err != nil {
		t.Fatalf("reload transaction failed: %v", err)
	}
	if stored.CompletedPaymentID == nil || *stored.CompletedPaymentID != "pay_hook" {
		t.Fatalf("expected idempotency key after save, got %v", stored.CompletedPaymentID)
	}

	duplicate := &models.Transaction{
		UserID:          user.ID,
		Kind:            constants.TransactionKindCreditPurchase,
		CreditsQuantity: 1,
		PaymentID:       "pay_hook",
		Status:          constants.TransactionStatusCompleted,
	}
	if err := db.Create(duplicate).Error; !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation on direct create, got %v", err)
	}
}

func TestTransactionRepositoryCompletedPaymentUnique(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewTransactionRepository(db)
	user := createRepoTestUser(t, db, "unique_txn@example.com", 0)

	first := &models.Transaction{
		UserID:          user.ID,
		Kind:            constants.TransactionKindCreditPurchase,
		Amount:          models.NewMoneyFromDecimal(decimal.RequireFromString("20.00")),
		CreditsQuantity: 2,
		PaymentMethod:   constants.PaymentMethodPix,
		PaymentID:       "pay_001",
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first transaction failed: %v", err)
	}
	if first.CompletedPaymentID == nil || *first.CompletedPaymentID != "pay_001" {
		t.Fatalf("expected idempotency key to be set, got %v", first.CompletedPaymentID)
	}

	second := &models.Transaction{
		UserID:          user.ID,
		Kind:            constants.TransactionKindCreditPurchase,
		CreditsQuantity: 2,
		PaymentID:       "pay_001",
	}
	err := repo.Create(second)
	if err == nil {
		t.Fatalf("expected unique violation on duplicated completed payment")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation error, got %v", err)
	}

	// 无支付号的流水不参与唯一约束
	for i := 0; i < 2; i++ {
		usage := &models.Transaction{
			UserID:          user.ID,
			Kind:            constants.TransactionKindCreditUsage,
			CreditsQuantity: -1,
		}
		if err := repo.Create(usage); err != nil {
			t.Fatalf("create usage transaction failed: %v", err)
		}
	}

	found, err := repo.GetCompletedByPaymentID("pay_001")
	if err != nil || found == nil {
		t.Fatalf("expected completed transaction, got %v err=%v", found, err)
	}
	if found.ID != first.ID {
		t.Fatalf("expected transaction %d got %d", first.ID, found.ID)
	}

	list, total, err := repo.ListByUser(TransactionListFilter{UserID: user.ID, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Fatalf("expected total 3 page 2, got total=%d len=%d", total, len(list))
	}
}

func TestUserRepositoryAddCreditsGuard(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewUserRepository(db)
	user := createRepoTestUser(t, db, "guard@example.com", 3)

	affected, err := repo.AddCredits(user.ID, -5)
	if err != nil {
		t.Fatalf("add credits failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected guarded debit to affect no rows, got %d", affected)
	}

	affected, err = repo.AddCredits(user.ID, 4)
	if err != nil || affected != 1 {
		t.Fatalf("expected credit to apply, affected=%d err=%v", affected, err)
	}
	reloaded, err := repo.GetByID(user.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.Credits != 7 {
		t.Fatalf("expected credits 7 got %d", reloaded.Credits)
	}

	sum, err := repo.SumCredits()
	if err != nil || sum != 7 {
		t.Fatalf("expected outstanding credits 7, got %d err=%v", sum, err)
	}
}

func TestUserRepositoryRejectsNegativeCredits(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	user := createRepoTestUser(t, db, "check@example.com", 1)

	err := db.Model(&models.User{}).Where("id = ?", user.ID).UpdateColumn("credits", -1).Error
	if err == nil {
		t.Fatalf("expected check constraint to reject negative credits")
	}
}

func TestCouponRepositoryGuardedIncrement(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewCouponRepository(db)
	maxUses := 1
	coupon := &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  constants.CouponTypePercentage,
		DiscountValue: models.NewMoneyFromInt(10),
		MaxUses:       &maxUses,
		IsActive:      true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	found, err := repo.GetByCode("  save10 ")
	if err != nil || found == nil || found.ID != coupon.ID {
		t.Fatalf("expected case-insensitive lookup, got %v err=%v", found, err)
	}

	affected, err := repo.IncrementUsesGuarded(coupon.ID)
	if err != nil || affected != 1 {
		t.Fatalf("first increment should apply, affected=%d err=%v", affected, err)
	}
	affected, err = repo.IncrementUsesGuarded(coupon.ID)
	if err != nil {
		t.Fatalf("second increment failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second increment should be blocked by max_uses, affected=%d", affected)
	}

	active, err := repo.CountActive(time.Now())
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if active != 0 {
		t.Fatalf("exhausted coupon should not count as active, got %d", active)
	}
}

func TestCouponUsageRepositoryStats(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewCouponUsageRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	usages := []models.CouponUsage{
		{CouponID: 1, UserID: 1, TransactionID: 10, DiscountApplied: models.NewMoneyFromDecimal(decimal.RequireFromString("2.50")), UsedAt: now.Add(-time.Hour)},
		{CouponID: 1, UserID: 2, TransactionID: 11, DiscountApplied: models.NewMoneyFromDecimal(decimal.RequireFromString("7.50")), UsedAt: now},
		{CouponID: 2, UserID: 2, TransactionID: 12, DiscountApplied: models.NewMoneyFromInt(5), UsedAt: now},
	}
	for i := range usages {
		if err := repo.Create(&usages[i]); err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}

	sum, err := repo.SumDiscountByCoupon(1)
	if err != nil {
		t.Fatalf("sum discount failed: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected total discount 10 got %s", sum.String())
	}

	empty, err := repo.SumDiscountByCoupon(99)
	if err != nil || !empty.IsZero() {
		t.Fatalf("expected zero discount for unused coupon, got %s err=%v", empty.String(), err)
	}

	recent, err := repo.ListRecentByCoupon(1, 100)
	if err != nil {
		t.Fatalf("list recent usage failed: %v", err)
	}
	if len(recent) != 2 || recent[0].TransactionID != 11 {
		t.Fatalf("expected newest usage first, got %+v", recent)
	}

	dup := models.CouponUsage{CouponID: 2, UserID: 3, TransactionID: 12, UsedAt: now}
	if err := repo.Create(&dup); !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for second usage on same transaction, got %v", err)
	}
}
