package models

import (
	"encoding/json"
	"time"
)

// EventAction tags the kind of a timeline entry.
type EventAction string

const (
	ActionCreated         EventAction = "created"
	ActionStatusChanged   EventAction = "status_changed"
	ActionAreaChanged     EventAction = "area_changed"
	ActionPriorityChanged EventAction = "priority_changed"
	ActionSubAreaChanged  EventAction = "sub_area_changed"
	ActionLogged          EventAction = "action_logged"
	ActionComment         EventAction = "comment"
	ActionClientFeedback  EventAction = "client_feedback_added"
	ActionClientRating    EventAction = "client_rating_added"
	ActionClientComment   EventAction = "client_comment_added"
)

type EventVisibility string

const (
	VisibilityInternal EventVisibility = "internal"
	VisibilityPublic   EventVisibility = "public"
)

// ClaimEvent is one immutable audit entry for a claim. Rows are append-only:
// nothing in the codebase updates or deletes them.
type ClaimEvent struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	ClaimID    uint            `json:"claim_id" gorm:"not null;index:idx_claim_events_claim_created"`
	ActorID    *uint           `json:"actor_id,omitempty"`
	ActorRole  *string         `json:"actor_role,omitempty" gorm:"size:20"`
	Action     EventAction     `json:"action" gorm:"type:varchar(40);not null"`
	Visibility EventVisibility `json:"visibility" gorm:"type:varchar(10);not null;default:'internal'"`
	Details    []byte          `json:"-" gorm:"type:jsonb;not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime;index:idx_claim_events_claim_created"`
}

func (ClaimEvent) TableName() string {
	return "claim_events"
}

// Per-kind detail payloads. Each event kind carries exactly one of these,
// marshaled into the Details column.

type CreatedDetails struct {
	Status ClaimStatus `json:"status"`
}

type StatusChangedDetails struct {
	From ClaimStatus `json:"from"`
	To   ClaimStatus `json:"to"`
}

type AreaChangedDetails struct {
	FromAreaID *uint  `json:"from_area_id"`
	ToAreaID   *uint  `json:"to_area_id"`
	Reason     string `json:"reason,omitempty"`
	// EmployeeID records who performed the derivation. It is stripped from
	// the public projection together with the resolved employee name.
	EmployeeID *uint `json:"employee_id,omitempty"`
}

type PriorityChangedDetails struct {
	From ClaimPriority `json:"from"`
	To   ClaimPriority `json:"to"`
}

type SubAreaChangedDetails struct {
	From       *string `json:"from"`
	To         *string `json:"to"`
	EmployeeID *uint   `json:"employee_id,omitempty"`
}

type ActionLoggedDetails struct {
	ActionDescription string `json:"action_description"`
}

type CommentDetails struct {
	Comment string `json:"comment"`
}

type ClientFeedbackDetails struct {
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating,omitempty"`
}

type ClientRatingDetails struct {
	Rating int `json:"rating"`
}

type ClientCommentDetails struct {
	Comment string `json:"comment"`
}

// NewClaimEvent builds an event with its detail payload marshaled in place.
func NewClaimEvent(claimID uint, actorID *uint, actorRole *string, action EventAction, visibility EventVisibility, details any) (ClaimEvent, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return ClaimEvent{}, err
	}
	return ClaimEvent{
		ClaimID:    claimID,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		Visibility: visibility,
		Details:    raw,
	}, nil
}

// DecodeDetails unmarshals the Details column into the detail struct matching
// the event's action. Unknown actions decode into a generic map so the
// projector's fallback formatting still has something to show.
func (e *ClaimEvent) DecodeDetails() (any, error) {
	var target any
	switch e.Action {
	case ActionCreated:
		target = &CreatedDetails{}
	case ActionStatusChanged:
		target = &StatusChangedDetails{}
	case ActionAreaChanged:
		target = &AreaChangedDetails{}
	case ActionPriorityChanged:
		target = &PriorityChangedDetails{}
	case ActionSubAreaChanged:
		target = &SubAreaChangedDetails{}
	case ActionLogged:
		target = &ActionLoggedDetails{}
	case ActionComment:
		target = &CommentDetails{}
	case ActionClientFeedback:
		target = &ClientFeedbackDetails{}
	case ActionClientRating:
		target = &ClientRatingDetails{}
	case ActionClientComment:
		target = &ClientCommentDetails{}
	default:
		target = &map[string]any{}
	}
	if len(e.Details) > 0 {
		if err := json.Unmarshal(e.Details, target); err != nil {
			return nil, err
		}
	}
	return target, nil
}
