package repository

import (
	"context"

	"gorm.io/gorm"

	"sci-task/backend/internal/model"
)

// RecycledExcelRepository 回收文件数据访问接口
type RecycledExcelRepository interface {
	Create(ctx context.Context, record *model.RecycledExcel) error
	GetByID(ctx context.Context, id int) (*model.RecycledExcel, error)
	ListByTask(ctx context.Context, taskID int) ([]model.RecycledExcel, error)
	ListByTaskAndTeacher(ctx context.Context, taskID int, teacherID string) ([]model.RecycledExcel, error)
	DeleteByTask(ctx context.Context, taskID int) ([]string, error)
	DeleteByTeacher(ctx context.Context, teacherID string) ([]string, error)
}

type recycledExcelRepo struct {
	db *gorm.DB
}

// NewRecycledExcelRepo 创建 RecycledExcelRepository 实例
func NewRecycledExcelRepo(db *gorm.DB) RecycledExcelRepository {
	return &recycledExcelRepo{db: db}
}

func (r *recycledExcelRepo) Create(ctx context.Context, record *model.RecycledExcel) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recycledExcelRepo) GetByID(ctx context.Context, id int) (*model.RecycledExcel, error) {
	var record model.RecycledExcel
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("r_id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recycledExcelRepo) ListByTask(ctx context.Context, taskID int) ([]model.RecycledExcel, error) {
	var records []model.RecycledExcel
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("task_id = ?", taskID).
		Order("upload_time DESC").
		Find(&records).Error
	return records, err
}

func (r *recycledExcelRepo) ListByTaskAndTeacher(ctx context.Context, taskID int, teacherID string) ([]model.RecycledExcel, error) {
	var records []model.RecycledExcel
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND teacher_id = ?", taskID, teacherID).
		Order("upload_time DESC").
		Find(&records).Error
	return records, err
}

// DeleteByTask 删除任务下全部回收记录，返回被删记录的文件路径供调用方清理磁盘。
func (r *recycledExcelRepo) DeleteByTask(ctx context.Context, taskID int) ([]string, error) {
	var records []model.RecycledExcel
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Find(&records).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.RecycledExcel{}).Error; err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.FilePath)
	}
	return paths, nil
}

func (r *recycledExcelRepo) DeleteByTeacher(ctx context.Context, teacherID string) ([]string, error) {
	var records []model.RecycledExcel
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Find(&records).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Delete(&model.RecycledExcel{}).Error; err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.FilePath)
	}
	return paths, nil
}
