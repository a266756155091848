package models

import (
	"time"
)

// User is an operator of the console
type User struct {
	Base
	FirstName          string     `gorm:"size:100;not null" json:"firstName" binding:"required,max=100"`
	LastName           string     `gorm:"size:100;not null" json:"lastName" binding:"required,max=100"`
	Email              string     `gorm:"size:150;not null;uniqueIndex:users_email_key" json:"email" binding:"required,email"`
	PasswordHash       string     `gorm:"column:password_hash;not null" json:"-"`
	Role               string     `gorm:"size:10;not null;default:USER" json:"role" binding:"omitempty,oneof=ADMIN USER"`
	IsActive           bool       `gorm:"not null;index" json:"isActive"`
	RecoveryCode       *string    `gorm:"size:6" json:"-"`
	RecoveryCodeSentAt *time.Time `json:"-"`
	LastLoginAt        *time.Time `json:"lastLoginAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ApplyDefaults gives new accounts the USER role, active
func (u *User) ApplyDefaults() {
	u.Role = RoleUser
	u.IsActive = true
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName joins first and last name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RecoveryCodeValid checks code against the stored one within ttl
func (u *User) RecoveryCodeValid(code string, ttl time.Duration, now time.Time) bool {
	if u.RecoveryCode == nil || u.RecoveryCodeSentAt == nil {
		return false
	}
	if *u.RecoveryCode != code {
		return false
	}
	return now.Sub(*u.RecoveryCodeSentAt) <= ttl
}
