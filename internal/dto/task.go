package dto

import (
	"time"

	"sci-task/backend/internal/model"
)

// 收件人选择方式
const (
	RecipientTypeAll        = "all"
	RecipientTypeDepartment = "department"
	RecipientTypeManual     = "manual"
)

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	TaskName      string     `json:"task_name" binding:"required,max=200"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	ReminderTime  *time.Time `json:"reminder_time"`
	EmailSubject  string     `json:"email_subject" binding:"omitempty,max=200"`
	EmailContent  string     `json:"email_content"`
	RecipientType string     `json:"recipient_type" binding:"required,oneof=all department manual"`
	DepID         string     `json:"dep_id" binding:"omitempty,max=20"`
	TeacherIDs    []string   `json:"teacher_ids"`
	Publish       bool       `json:"publish"`
}

// UpdateTaskRequest 更新草稿任务请求
type UpdateTaskRequest struct {
	TaskName      string     `json:"task_name" binding:"required,max=200"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	ReminderTime  *time.Time `json:"reminder_time"`
	EmailSubject  string     `json:"email_subject" binding:"omitempty,max=200"`
	EmailContent  string     `json:"email_content"`
	RecipientType string     `json:"recipient_type" binding:"required,oneof=all department manual"`
	DepID         string     `json:"dep_id" binding:"omitempty,max=20"`
	TeacherIDs    []string   `json:"teacher_ids"`
	Version       int        `json:"version" binding:"required,gte=1"`
	Publish       bool       `json:"publish"`
}

// UpdateTaskStatusRequest 更新任务状态请求
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft active completed cancelled"`
}

// TaskListQuery 任务列表查询参数
type TaskListQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=draft active completed cancelled"`
	Keyword string `form:"keyword"`
	Page    int    `form:"page,default=1" binding:"omitempty,gte=1"`
	Size    int    `form:"size,default=20" binding:"omitempty,gte=1,lte=100"`
}

// TaskResponse 任务响应
type TaskResponse struct {
	TaskID       int        `json:"task_id"`
	TaskName     string     `json:"task_name"`
	FormatFile   string     `json:"format_file"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	ReminderTime *time.Time `json:"reminder_time"`
	Status       string     `json:"status"`
	EmailSubject string     `json:"email_subject"`
	EmailContent string     `json:"email_content"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToTaskResponse 将任务模型转换为响应
func ToTaskResponse(t *model.Task) *TaskResponse {
	return &TaskResponse{
		TaskID:       t.TaskID,
		TaskName:     t.TaskName,
		FormatFile:   t.FormatFile,
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		ReminderTime: t.ReminderTime,
		Status:       t.Status,
		EmailSubject: t.EmailSubject,
		EmailContent: t.EmailContent,
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToTaskResponses 批量转换
func ToTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, *ToTaskResponse(&tasks[i]))
	}
	return out
}

// RecipientResponse 任务收件人响应
type RecipientResponse struct {
	TeacherID string     `json:"teacher_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	IsReplied bool       `json:"is_replied"`
	SentTime  *time.Time `json:"sent_time"`
}

// ToRecipientResponses 批量转换收件人
func ToRecipientResponses(recipients []model.TaskRecipient) []RecipientResponse {
	out := make([]RecipientResponse, 0, len(recipients))
	for i := range recipients {
		r := &recipients[i]
		resp := RecipientResponse{
			TeacherID: r.TeacherID,
			IsReplied: r.IsReplied,
			SentTime:  r.SentTime,
		}
		if r.Teacher != nil {
			resp.Name = r.Teacher.Name
			resp.Email = r.Teacher.Email
		}
		out = append(out, resp)
	}
	return out
}

// SendResultItem 单个收件人的发送结果
type SendResultItem struct {
	TeacherID string `json:"teacher_id"`
	Email     string `json:"email"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// PublishTaskResponse 任务发布结果
type PublishTaskResponse struct {
	Task    *TaskResponse    `json:"task"`
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []SendResultItem `json:"results"`
}

// TaskStatsResponse 任务回收统计
type TaskStatsResponse struct {
	TaskID     int     `json:"task_id"`
	Total      int     `json:"total"`
	Replied    int     `json:"replied"`
	NotReplied int     `json:"not_replied"`
	ReplyRate  float64 `json:"reply_rate"`
}

// RecycledExcelResponse 回收文件响应
type RecycledExcelResponse struct {
	RID         int       `json:"r_id"`
	TaskID      int       `json:"task_id"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	FilePath    string    `json:"file_path"`
	UploadTime  time.Time `json:"upload_time"`
}

// ToRecycledExcelResponses 批量转换回收记录
func ToRecycledExcelResponses(records []model.RecycledExcel) []RecycledExcelResponse {
	out := make([]RecycledExcelResponse, 0, len(records))
	for i := range records {
		rec := &records[i]
		resp := RecycledExcelResponse{
			RID:        rec.RID,
			TaskID:     rec.TaskID,
			TeacherID:  rec.TeacherID,
			FilePath:   rec.FilePath,
			UploadTime: rec.UploadTime,
		}
		if rec.Teacher != nil {
			resp.TeacherName = rec.Teacher.Name
		}
		out = append(out, resp)
	}
	return out
}
