package model

// AdminUser 管理员账号表 — 对应 admin_users
type AdminUser struct {
	AdminID      string `gorm:"column:admin_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"admin_id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	BaseModel
}

// TableName 指定表名
func (AdminUser) TableName() string { return "admin_users" }
