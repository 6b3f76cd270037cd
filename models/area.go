package models

import "time"

// Area is the organizational unit a claim gets derived to.
type Area struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:120;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"size:500"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	SubAreas []SubArea `json:"sub_areas,omitempty" gorm:"foreignKey:AreaID"`
}

func (Area) TableName() string {
	return "areas"
}

// SubArea is a nested unit inside an area. It is internal-only
// classification and is never shown to the client role.
type SubArea struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AreaID    uint      `json:"area_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SubArea) TableName() string {
	return "sub_areas"
}

type AreaCreate struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=500"`
}

type AreaUpdate struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type SubAreaCreate struct {
	Name string `json:"name" binding:"required,max=120"`
}
