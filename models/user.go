package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEmployee UserRole = "employee"
	RoleClient   UserRole = "client"
)

// User covers the three account kinds of the system. Employees carry an
// area assignment, clients carry a company name; admins carry neither.
type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Email        string   `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	FullName     string   `json:"full_name" gorm:"size:200"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;check:role IN ('admin','employee','client')"`

	AreaID      *uint   `json:"area_id,omitempty"`
	Area        *Area   `json:"area,omitempty" gorm:"foreignKey:AreaID"`
	CompanyName *string `json:"company_name,omitempty" gorm:"size:200"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that defaults new accounts to the client role.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleClient
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// DisplayName is what the timeline shows for an actor.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// EmployeeCreate represents the admin-facing payload for creating an employee.
type EmployeeCreate struct {
	FullName string `json:"full_name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	AreaID   uint   `json:"area_id" binding:"required"`
}

// EmployeeUpdate allows partial edits; nil fields are left untouched.
type EmployeeUpdate struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	AreaID   *uint   `json:"area_id"`
}

type ClientCreate struct {
	CompanyName string `json:"company_name" binding:"required,max=200"`
	FullName    string `json:"full_name"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

type ClientUpdate struct {
	CompanyName *string `json:"company_name"`
	FullName    *string `json:"full_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,min=6"`
}
