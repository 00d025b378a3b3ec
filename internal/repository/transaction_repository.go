package repository

import (
	"errors"
	"strings"

	"github.com/cyberregistro/ledger/internal/constants"
	"github.com/cyberregistro/ledger/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 积分流水数据访问接口（只追加）
type TransactionRepository interface {
	Create(txn *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	GetCompletedByPaymentID(paymentID string) (*models.Transaction, error)
	ListByUser(filter TransactionListFilter) ([]models.Transaction, int64, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建积分流水仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// Create 写入流水；同一外部支付号的第二条 completed 流水会触发唯一约束
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	if txn == nil {
		return errors.New("transaction is nil")
	}
	if txn.Status == "" {
		txn.Status = constants.TransactionStatusCompleted
	}
	return r.db.Create(txn).Error
}

// GetByID 根据 ID 获取流水
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetCompletedByPaymentID 查询外部支付号对应的已完成流水
func (r *GormTransactionRepository) GetCompletedByPaymentID(paymentID string) (*models.Transaction, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, nil
	}
	var txn models.Transaction
	if err := r.db.Where("payment_id = ? AND status = ?", paymentID, constants.TransactionStatusCompleted).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListByUser 分页查询用户流水，最新在前
func (r *GormTransactionRepository) ListByUser(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{}).Where("user_id = ?", filter.UserID)
	if filter.Kind != "" {
		query = query.Where("type = ?", filter.Kind)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.Transaction
	if err := query.Order("created_at desc, id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
