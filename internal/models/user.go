package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RolePlanner UserRole = "planner"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:150;not null;unique"`
	PasswordHash string   `gorm:"size:100;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
