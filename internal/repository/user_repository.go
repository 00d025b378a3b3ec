package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	AddCredits(id uint, delta int64) (int64, error)
	TouchLastLogin(id uint, at time.Time) error
	SumCredits() (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// Transaction 开启数据库事务，fn 返回错误时整体回滚
func (r *GormUserRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByEmail 根据邮箱获取用户（邮箱统一小写存储）
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate 加行锁获取用户，需在事务内调用
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := withRowLock(r.db).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// AddCredits 原子调整余额，扣减时要求结果非负；返回受影响行数
func (r *GormUserRepository) AddCredits(id uint, delta int64) (int64, error) {
	query := r.db.Model(&models.User{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("credits >= ?", -delta)
	}
	result := query.UpdateColumns(map[string]interface{}{
		"credits":    gorm.Expr("credits + ?", delta),
		"updated_at": time.Now(),
	})
	return result.RowsAffected, result.Error
}

// TouchLastLogin 更新最后登录时间
func (r *GormUserRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

// SumCredits 统计全部未消费积分
func (r *GormUserRepository) SumCredits() (int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Select("COALESCE(SUM(credits), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
