package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sci-task/backend/internal/model"
)

// RecipientStats 任务收件人的统计汇总
type RecipientStats struct {
	Total   int64
	Replied int64
}

// TaskRecipientRepository 任务收件人数据访问接口
type TaskRecipientRepository interface {
	BatchCreate(ctx context.Context, recipients []model.TaskRecipient) error
	ListByTask(ctx context.Context, taskID int) ([]model.TaskRecipient, error)
	GetByTaskAndTeacher(ctx context.Context, taskID int, teacherID string) (*model.TaskRecipient, error)
	DeleteByTask(ctx context.Context, taskID int) error
	DeleteByTeacher(ctx context.Context, teacherID string) error
	MarkSent(ctx context.Context, taskID int, teacherID string, sentAt time.Time) error
	MarkReplied(ctx context.Context, taskID int, teacherID string) error
	Stats(ctx context.Context, taskID int) (*RecipientStats, error)
}

type taskRecipientRepo struct {
	db *gorm.DB
}

// NewTaskRecipientRepo 创建 TaskRecipientRepository 实例
func NewTaskRecipientRepo(db *gorm.DB) TaskRecipientRepository {
	return &taskRecipientRepo{db: db}
}

func (r *taskRecipientRepo) BatchCreate(ctx context.Context, recipients []model.TaskRecipient) error {
	if len(recipients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(recipients, 100).Error
}

func (r *taskRecipientRepo) ListByTask(ctx context.Context, taskID int) ([]model.TaskRecipient, error) {
	var recipients []model.TaskRecipient
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("task_id = ?", taskID).
		Order("teacher_id ASC").
		Find(&recipients).Error
	return recipients, err
}

func (r *taskRecipientRepo) GetByTaskAndTeacher(ctx context.Context, taskID int, teacherID string) (*model.TaskRecipient, error) {
	var recipient model.TaskRecipient
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND teacher_id = ?", taskID, teacherID).
		First(&recipient).Error
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}

func (r *taskRecipientRepo) DeleteByTask(ctx context.Context, taskID int) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&model.TaskRecipient{}).Error
}

func (r *taskRecipientRepo) DeleteByTeacher(ctx context.Context, teacherID string) error {
	return r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Delete(&model.TaskRecipient{}).Error
}

func (r *taskRecipientRepo) MarkSent(ctx context.Context, taskID int, teacherID string, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.TaskRecipient{}).
		Where("task_id = ? AND teacher_id = ?", taskID, teacherID).
		Update("sent_time", sentAt).Error
}

func (r *taskRecipientRepo) MarkReplied(ctx context.Context, taskID int, teacherID string) error {
	return r.db.WithContext(ctx).
		Model(&model.TaskRecipient{}).
		Where("task_id = ? AND teacher_id = ?", taskID, teacherID).
		Update("is_replied", true).Error
}

func (r *taskRecipientRepo) Stats(ctx context.Context, taskID int) (*RecipientStats, error) {
	var stats RecipientStats
	err := r.db.WithContext(ctx).
		Model(&model.TaskRecipient{}).
		Where("task_id = ?", taskID).
		Count(&stats.Total).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&model.TaskRecipient{}).
		Where("task_id = ? AND is_replied = ?", taskID, true).
		Count(&stats.Replied).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
