package models

import "time"

type ClaimStatus string

const (
	StatusIngresado ClaimStatus = "Ingresado"
	StatusEnProceso ClaimStatus = "En Proceso"
	StatusResuelto  ClaimStatus = "Resuelto"
)

type ClaimPriority string

const (
	PriorityBaja  ClaimPriority = "Baja"
	PriorityMedia ClaimPriority = "Media"
	PriorityAlta  ClaimPriority = "Alta"
)

// AllowedSeverities are the S1..S4 labels the intake form offers.
var AllowedSeverities = []string{"S1 - Crítico", "S2 - Alto", "S3 - Medio", "S4 - Bajo"}

func (s ClaimStatus) IsValid() bool {
	switch s {
	case StatusIngresado, StatusEnProceso, StatusResuelto:
		return true
	default:
		return false
	}
}

func (p ClaimPriority) IsValid() bool {
	switch p {
	case PriorityBaja, PriorityMedia, PriorityAlta:
		return true
	default:
		return false
	}
}

func IsValidSeverity(s string) bool {
	if s == "" {
		return true
	}
	for _, allowed := range AllowedSeverities {
		if s == allowed {
			return true
		}
	}
	return false
}

// Claim is one reported issue tracked through its resolution lifecycle.
type Claim struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	ProjectID uint     `json:"project_id" gorm:"not null;index"`
	Project   *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`

	ClaimType   string `json:"claim_type" gorm:"size:120;not null"`
	Urgency     string `json:"urgency" gorm:"size:20;not null"`
	Severity    string `json:"severity" gorm:"size:20"`
	Description string `json:"description" gorm:"type:text;not null"`

	Status   ClaimStatus   `json:"status" gorm:"type:varchar(20);not null;default:'Ingresado';index"`
	Priority ClaimPriority `json:"priority" gorm:"type:varchar(20);not null;default:'Media'"`

	AreaID  *uint   `json:"area_id"`
	Area    *Area   `json:"area,omitempty" gorm:"foreignKey:AreaID"`
	SubArea *string `json:"sub_area,omitempty" gorm:"size:120"`

	ResolutionDescription *string    `json:"resolution_description,omitempty" gorm:"type:text"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`

	AttachmentURL  *string `json:"attachment_url,omitempty" gorm:"size:500"`
	AttachmentName *string `json:"attachment_name,omitempty" gorm:"size:255"`

	// Set at most once per claim, and only once the claim is resolved.
	ClientFeedback *string `json:"client_feedback,omitempty" gorm:"type:text"`
	ClientRating   *int    `json:"client_rating,omitempty" gorm:"check:client_rating >= 1 AND client_rating <= 5"`

	CreatedBy uint  `json:"created_by" gorm:"not null;index"`
	Creator   *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	// Version increments on every staff update; updates may assert the
	// version they read and get a conflict on mismatch.
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Claim) TableName() string {
	return "claims"
}

// IsResolved reports whether the claim reached its terminal status.
func (c *Claim) IsResolved() bool {
	return c.Status == StatusResuelto
}

// HasFeedback reports whether the client already submitted feedback or a rating.
func (c *Claim) HasFeedback() bool {
	return c.ClientFeedback != nil || c.ClientRating != nil
}

// ClaimCreate is the client intake form. Attachment travels as a separate
// multipart file part, not in this struct.
type ClaimCreate struct {
	ProjectID   uint   `json:"project_id" form:"project_id" binding:"required"`
	ClaimType   string `json:"claim_type" form:"claim_type" binding:"required,max=120"`
	Urgency     string `json:"urgency" form:"urgency" binding:"required"`
	Severity    string `json:"severity" form:"severity"`
	Description string `json:"description" form:"description" binding:"required"`
}

// ClaimManagementUpdate is the staff-facing combined-edit form. Any subset of
// the fields may be present; validation is all-or-nothing.
type ClaimManagementUpdate struct {
	Status                *ClaimStatus   `json:"status"`
	Priority              *ClaimPriority `json:"priority"`
	AreaID                *uint          `json:"area_id"`
	ClearArea             bool           `json:"clear_area"`
	SubArea               *string        `json:"sub_area"`
	Reason                string         `json:"reason"`
	ResolutionDescription string         `json:"resolution_description"`
	Version               *int           `json:"version"`
}

type ClaimFeedbackCreate struct {
	Feedback string `json:"feedback" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
}

type ClaimCommentCreate struct {
	Comment string `json:"comment" binding:"required"`
}

type ClaimActionCreate struct {
	ActionDescription string `json:"action_description" binding:"required"`
}
