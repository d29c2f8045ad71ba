package model

// 员工雇佣状态
const (
	EmployeeStatusActive   = "Active"
	EmployeeStatusInactive = "Inactive"
	EmployeeStatusLeft     = "Left"
)

// 员工角色
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// Employee 员工目录表 — 对应 employees
// 本核心只读取员工目录（打卡/排班前置校验）；目录的维护属于外围系统
type Employee struct {
	EmployeeID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	Company      string `gorm:"type:varchar(100);not null"                     json:"company"`
	Status       string `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// IsActive 员工是否处于在职状态
func (e *Employee) IsActive() bool { return e.Status == EmployeeStatusActive }
