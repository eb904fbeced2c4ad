package dto

import (
	"time"

	"sci-task/backend/internal/model"
)

// CreateDepartmentRequest 创建院系请求
type CreateDepartmentRequest struct {
	DepID    string `json:"dep_id" binding:"required,max=20"`
	DepName  string `json:"dep_name" binding:"required,max=100"`
	SchoolID string `json:"school_id" binding:"omitempty,max=20"`
}

// UpdateDepartmentRequest 更新院系请求
type UpdateDepartmentRequest struct {
	DepName  *string `json:"dep_name" binding:"omitempty,max=100"`
	SchoolID *string `json:"school_id" binding:"omitempty,max=20"`
}

// DepartmentResponse 院系响应
type DepartmentResponse struct {
	DepID     string    `json:"dep_id"`
	DepName   string    `json:"dep_name"`
	SchoolID  string    `json:"school_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDepartmentResponse 将院系模型转换为响应
func ToDepartmentResponse(d *model.Department) *DepartmentResponse {
	return &DepartmentResponse{
		DepID:     d.DepID,
		DepName:   d.DepName,
		SchoolID:  d.SchoolID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ToDepartmentResponses 批量转换
func ToDepartmentResponses(depts []model.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		out = append(out, *ToDepartmentResponse(&depts[i]))
	}
	return out
}
