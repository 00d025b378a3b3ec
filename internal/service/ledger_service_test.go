package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 单连接串行化并发事务，避免共享缓存锁冲突
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createServiceTestUser(t *testing.T, db *gorm.DB, id uint, credits int64) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Name:         fmt.Sprintf("Seller %d", id),
		Email:        fmt.Sprintf("seller_%d@example.com", id),
		PasswordHash: "hash",
		Credits:      credits,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func newTestLedgerService(db *gorm.DB) *LedgerService {
	return NewLedgerService(repository.NewUserRepository(db), repository.NewTransactionRepository(db))
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "user-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 6},
		},
	}
}

func reloadCredits(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return user.Credits
}

func countTransactions(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	return count
}

func TestLedgerDebitInsufficientCredits(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestLedgerService(db)
	user := createServiceTestUser(t, db, 1, 3)

	_, err := svc.Debit(user.ID, 5, "")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected insufficient credits, got %v", err)
	}
	var insufficient *InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected typed insufficient error, got %T", err)
	}
	if insufficient.CurrentCredits != 3 || insufficient.Required != 5 {
		t.Fatalf("unexpected error payload: %+v", insufficient)
	}
	if got := reloadCredits(t, db, user.ID); got != 3 {
		t.Fatalf("balance should stay 3, got %d", got)
	}
	if got := countTransactions(t, db, user.ID); got != 0 {
		t.Fatalf("rejected debit must not write transactions, got %d", got)
	}
}

func TestLedgerDebitAndCredit(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestLedgerService(db)
	user := createServiceTestUser(t, db, 1, 2)

	added, err := svc.Credit(user.ID, 10, "")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if added.PreviousBalance != 2 || added.NewBalance != 12 || added.Amount != 10 {
		t.Fatalf("unexpected credit result: %+v", added)
	}
	if added.Transaction.Description != "Adição manual de 10 créditos" {
		t.Fatalf("unexpected default description %q", added.Transaction.Description)
	}

	debited, err := svc.Debit(user.ID, 4, "  ")
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if debited.PreviousBalance != 12 || debited.NewBalance != 8 || debited.Amount != 4 {
		t.Fatalf("unexpected debit result: %+v", debited)
	}
	if debited.Transaction.Kind != constants.TransactionKindCreditUsage || debited.Transaction.CreditsQuantity != -4 {
		t.Fatalf("unexpected debit transaction: %+v", debited.Transaction)
	}
	if debited.Transaction.Description != constants.DefaultDebitDescription {
		t.Fatalf("unexpected debit description %q", debited.Transaction.Description)
	}
	if got := reloadCredits(t, db, user.ID); got != 8 {
		t.Fatalf("expected balance 8, got %d", got)
	}

	check, err := svc.CheckBalance(user.ID, 8)
	if err != nil || !check.Sufficient || check.CurrentCredits != 8 {
		t.Fatalf("unexpected check result %+v err=%v", check, err)
	}
	check, err = svc.CheckBalance(user.ID, 9)
	if err != nil || check.Sufficient {
		t.Fatalf("9 credits should be insufficient, got %+v err=%v", check, err)
	}

	list, total, err := svc.ListTransactions(repository.TransactionListFilter{UserID: user.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if total != 2 || len(list) != 2 || list[0].ID != debited.Transaction.ID {
		t.Fatalf("expected newest first, total=%d list=%+v", total, list)
	}
}

func TestLedgerRejectsInvalidInput(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestLedgerService(db)
	createServiceTestUser(t, db, 1, 5)

	if _, err := svc.Debit(1, 0, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := svc.Credit(1, -3, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := svc.CheckBalance(99, 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := svc.Debit(99, 1, ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found on debit, got %v", err)
	}
	if _, err := svc.Balance(99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found on balance, got %v", err)
	}
}

func TestLedgerConcurrentDebitsAndCredits(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestLedgerService(db)
	user := createServiceTestUser(t, db, 1, 10)

	const debits = 20
	const credits = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int64
		succeeded int64
	)
	for i := 0; i < debits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Debit(user.ID, 1, "uso"); err == nil {
				mu.Lock()
				committed--
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientCredits) {
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	for i := 0; i < credits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Credit(user.ID, 2, ""); err != nil {
				t.Errorf("unexpected credit error: %v", err)
				return
			}
			mu.Lock()
			committed += 2
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	final := reloadCredits(t, db, user.ID)
	if final < 0 {
		t.Fatalf("balance went negative: %d", final)
	}
	if final != 10+committed {
		t.Fatalf("final balance %d != initial + committed deltas %d", final, 10+committed)
	}
	if got := countTransactions(t, db, user.ID); got != succeeded {
		t.Fatalf("expected %d transactions, got %d", succeeded, got)
	}
}
