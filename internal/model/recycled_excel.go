package model

import "time"

// RecycledExcel 回收文件表 — 对应 recycled_excels
// 记录教师针对某任务回传/替换的文件，核心视角下只增不改
type RecycledExcel struct {
	RID        int       `gorm:"column:r_id;primaryKey;autoIncrement"     json:"r_id"`
	FilePath   string    `gorm:"column:file_path;type:varchar(200);not null" json:"file_path"`
	UploadTime time.Time `gorm:"column:upload_time;not null;default:CURRENT_TIMESTAMP" json:"upload_time"`
	TaskID     int       `gorm:"column:task_id"                           json:"task_id"`
	TeacherID  string    `gorm:"column:teacher_id;type:varchar(20)"       json:"teacher_id"`

	// 关联
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
	Task    *Task    `gorm:"foreignKey:TaskID;references:TaskID"       json:"task,omitempty"`
}

// TableName 指定表名
func (RecycledExcel) TableName() string { return "recycled_excels" }
