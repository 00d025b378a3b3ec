package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/metrics"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/repository"

	"gorm.io/gorm"
)

// LedgerService 积分账本服务
type LedgerService struct {
	userRepo repository.UserRepository
	txnRepo  repository.TransactionRepository
}

// BalanceCheckResult 余额检查结果
type BalanceCheckResult struct {
	CurrentCredits int64 `json:"currentCredits"`
	Sufficient     bool  `json:"sufficient"`
}

// BalanceChangeResult 余额变动结果
type BalanceChangeResult struct {
	PreviousBalance int64
	NewBalance      int64
	Amount          int64
	Transaction     *models.Transaction
}

// NewLedgerService 创建账本服务
func NewLedgerService(userRepo repository.UserRepository, txnRepo repository.TransactionRepository) *LedgerService {
	return &LedgerService{
		userRepo: userRepo,
		txnRepo:  txnRepo,
	}
}

// CheckBalance 检查余额是否足够（只读，不加锁）
func (s *LedgerService) CheckBalance(userID uint, amount int64) (*BalanceCheckResult, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &BalanceCheckResult{
		CurrentCredits: user.Credits,
		Sufficient:     user.Credits >= amount,
	}, nil
}

// Balance 当前余额
func (s *LedgerService) Balance(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidUserID
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return user.Credits, nil
}

// Debit 扣减积分，余额不足时不做任何修改
func (s *LedgerService) Debit(userID uint, amount int64, description string) (*BalanceChangeResult, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	description = cleanLedgerDescription(description, constants.DefaultDebitDescription)

	result, err := s.changeBalance(userID, -amount, constants.TransactionKindCreditUsage, description)
	if err != nil {
		var insufficient *InsufficientCreditsError
		if errors.As(err, &insufficient) {
			metrics.InsufficientCredits.Inc()
			logger.Infow("ledger_debit_rejected",
				"user_id", userID,
				"current_credits", insufficient.CurrentCredits,
				"required", insufficient.Required,
			)
		}
		return nil, err
	}
	return result, nil
}

// Credit 增加积分
func (s *LedgerService) Credit(userID uint, amount int64, description string) (*BalanceChangeResult, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	description = cleanLedgerDescription(description, fmt.Sprintf("Adição manual de %d créditos", amount))
	return s.changeBalance(userID, amount, constants.TransactionKindCreditPurchase, description)
}

// ListTransactions 分页查询用户流水
func (s *LedgerService) ListTransactions(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrInvalidUserID
	}
	return s.txnRepo.ListByUser(filter)
}

// changeBalance 行锁内变更余额并写入一条流水
func (s *LedgerService) changeBalance(userID uint, delta int64, kind, description string) (*BalanceChangeResult, error) {
	var result *BalanceChangeResult
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if delta < 0 && user.Credits < -delta {
			return &InsufficientCreditsError{CurrentCredits: user.Credits, Required: -delta}
		}

		affected, err := userRepo.AddCredits(userID, delta)
		if err != nil {
			return err
		}
		if affected == 0 {
			// sqlite 无行锁，条件更新兜底
			return &InsufficientCreditsError{CurrentCredits: user.Credits, Required: -delta}
		}

		txn := &models.Transaction{
			UserID:          userID,
			Kind:            kind,
			Amount:          models.ZeroMoney(),
			CreditsQuantity: delta,
			Status:          constants.TransactionStatusCompleted,
			Description:     description,
		}
		if err := s.txnRepo.WithTx(tx).Create(txn); err != nil {
			return err
		}
		result = &BalanceChangeResult{
			PreviousBalance: user.Credits,
			NewBalance:      user.Credits + delta,
			Amount:          absInt64(delta),
			Transaction:     txn,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CreditsMoved.WithLabelValues(kind).Add(float64(result.Amount))
	logger.Infow("ledger_balance_changed",
		"user_id", userID,
		"kind", kind,
		"delta", delta,
		"previous_balance", result.PreviousBalance,
		"new_balance", result.NewBalance,
		"transaction_id", result.Transaction.ID,
	)
	return result, nil
}

func cleanLedgerDescription(description, fallback string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
