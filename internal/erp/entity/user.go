package entity

import (
	"time"
)

// User 系统用户，邮箱即可指派的账号标识
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Email     string    `json:"email" gorm:"size:140;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:100"`
	Status    string    `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "erp_users"
}

// Employee 员工档案，通过 UserEmail 关联系统用户
type Employee struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	EmpCode   string    `json:"emp_code" gorm:"size:50;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	UserEmail string    `json:"user_email" gorm:"size:140"`
	Status    string    `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "erp_employees"
}
