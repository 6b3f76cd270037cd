package models

import "time"

// Project belongs to a client; every claim is filed against a project.
type Project struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	ProjectType string    `json:"project_type" gorm:"size:100;not null"`
	ClientID    uint      `json:"client_id" gorm:"not null;index"`
	Client      *User     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectCreate struct {
	Name        string `json:"name" binding:"required,max=200"`
	ProjectType string `json:"project_type" binding:"required,max=100"`
	ClientID    uint   `json:"client_id" binding:"required"`
}

type ProjectUpdate struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	ProjectType *string `json:"project_type" binding:"omitempty,max=100"`
	ClientID    *uint   `json:"client_id"`
}
