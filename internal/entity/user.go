package entity

import (
	"time"
)

// UserRole 用户角色
const (
	UserRoleAdmin   = "admin"
	UserRolePlanner = "planner"
	UserRoleViewer  = "viewer"
)

// User 用户
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string     `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:64;not null"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         string     `json:"role" gorm:"size:16;not null;default:planner"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
