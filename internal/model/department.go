package model

// Department 院系表 — 对应 departments
// DepID 由管理员指定（如 "D01"），不是自动生成的代理键
type Department struct {
	DepID    string `gorm:"column:dep_id;type:varchar(20);primaryKey" json:"dep_id"`
	DepName  string `gorm:"column:dep_name;type:varchar(50);not null" json:"dep_name"`
	SchoolID string `gorm:"column:school_id;type:varchar(20)"         json:"school_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
