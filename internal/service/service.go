package service

import (
	"go.uber.org/zap"

	"sci-task/backend/internal/repository"
	"sci-task/backend/pkg/jwt"
	"sci-task/backend/pkg/mailer"
	"sci-task/backend/pkg/redis"
)

// Service 聚合全部业务服务
type Service struct {
	Auth       AuthService
	Department DepartmentService
	Teacher    TeacherService
	Task       TaskService
	Notify     NotifyService
	Export     ExportService
	Dashboard  DashboardService
}

// NewService 创建服务聚合
func NewService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	transport mailer.Transport,
	uploadDir string,
	logger *zap.Logger,
) *Service {
	notify := NewNotifyService(transport, logger)
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, rdb, logger),
		Department: NewDepartmentService(repo, logger),
		Teacher:    NewTeacherService(repo, logger),
		Task:       NewTaskService(repo, notify, uploadDir, logger),
		Notify:     notify,
		Export:     NewExportService(repo, logger),
		Dashboard:  NewDashboardService(repo, logger),
	}
}
