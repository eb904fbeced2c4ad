package repository

import (
	"context"

	"gorm.io/gorm"

	"sci-task/backend/internal/model"
)

// TeacherListFilter 教师列表查询条件
type TeacherListFilter struct {
	DepID   string
	Keyword string
	Page    int
	Size    int
}

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	BatchCreate(ctx context.Context, teachers []model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	List(ctx context.Context, filter TeacherListFilter) ([]model.Teacher, int64, error)
	ListAll(ctx context.Context) ([]model.Teacher, error)
	ListByDepartment(ctx context.Context, depID string) ([]model.Teacher, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Teacher, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) BatchCreate(ctx context.Context, teachers []model.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(teachers, 100).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(ctx context.Context, filter TeacherListFilter) ([]model.Teacher, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Teacher{})

	if filter.DepID != "" {
		query = query.Where("dep_id = ?", filter.DepID)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR teacher_id LIKE ? OR email LIKE ?", kw, kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teachers []model.Teacher
	err := query.
		Preload("Department").
		Order("teacher_id ASC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&teachers).Error
	return teachers, total, err
}

func (r *teacherRepo) ListAll(ctx context.Context) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("teacher_id ASC").
		Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) ListByDepartment(ctx context.Context, depID string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.db.WithContext(ctx).
		Where("dep_id = ?", depID).
		Order("teacher_id ASC").
		Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Teacher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var teachers []model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id IN ?", ids).
		Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

func (r *teacherRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		Delete(&model.Teacher{}).Error
}

func (r *teacherRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("teacher_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *teacherRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Count(&count).Error
	return count, err
}
