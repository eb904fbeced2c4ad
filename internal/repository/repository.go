package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Department DepartmentRepository
	Teacher    TeacherRepository
	Task       TaskRepository
	Recipient  TaskRecipientRepository
	Recycled   RecycledExcelRepository
	Admin      AdminRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Department: NewDepartmentRepo(db),
		Teacher:    NewTeacherRepo(db),
		Task:       NewTaskRepo(db),
		Recipient:  NewTaskRecipientRepo(db),
		Recycled:   NewRecycledExcelRepo(db),
		Admin:      NewAdminRepo(db),
	}
}

// BeginTx 开启数据库事务
// db 为 nil（单测注入 mock 仓库）时返回 nil 事务，调用方须以 tx != nil 判定
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务的 Repository 聚合
// tx 为 nil 时返回自身（mock 场景下各仓库本身即内存实现）
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{
		db:         tx,
		Department: NewDepartmentRepo(tx),
		Teacher:    NewTeacherRepo(tx),
		Task:       NewTaskRepo(tx),
		Recipient:  NewTaskRecipientRepo(tx),
		Recycled:   NewRecycledExcelRepo(tx),
		Admin:      NewAdminRepo(tx),
	}
}
