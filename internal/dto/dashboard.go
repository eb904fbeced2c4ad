package dto

// DashboardSummaryResponse 工作台概览统计
type DashboardSummaryResponse struct {
	DepartmentCount int64 `json:"department_count"`
	TeacherCount    int64 `json:"teacher_count"`
	TaskCount       int64 `json:"task_count"`
	DraftTasks      int64 `json:"draft_tasks"`
	ActiveTasks     int64 `json:"active_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	CancelledTasks  int64 `json:"cancelled_tasks"`
}
