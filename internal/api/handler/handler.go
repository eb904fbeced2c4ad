package handler

import "sci-task/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Department *DepartmentHandler
	Teacher    *TeacherHandler
	Task       *TaskHandler
	Dashboard  *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Department: NewDepartmentHandler(svc.Department),
		Teacher:    NewTeacherHandler(svc.Teacher, svc.Export),
		Task:       NewTaskHandler(svc.Task),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}
