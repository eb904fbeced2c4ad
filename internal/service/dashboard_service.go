package service

import (
	"context"

	"go.uber.org/zap"

	"sci-task/backend/internal/dto"
	"sci-task/backend/internal/model"
	"sci-task/backend/internal/repository"
)

// DashboardService 工作台概览
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummaryResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建工作台服务
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	depCount, err := s.repo.Department.Count(ctx)
	if err != nil {
		s.logger.Error("统计院系数量失败", zap.Error(err))
		return nil, err
	}
	teacherCount, err := s.repo.Teacher.Count(ctx)
	if err != nil {
		s.logger.Error("统计教师数量失败", zap.Error(err))
		return nil, err
	}
	byStatus, err := s.repo.Task.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计任务数量失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardSummaryResponse{
		DepartmentCount: depCount,
		TeacherCount:    teacherCount,
		DraftTasks:      byStatus[model.TaskStatusDraft],
		ActiveTasks:     byStatus[model.TaskStatusActive],
		CompletedTasks:  byStatus[model.TaskStatusCompleted],
		CancelledTasks:  byStatus[model.TaskStatusCancelled],
	}
	for _, n := range byStatus {
		resp.TaskCount += n
	}
	return resp, nil
}
