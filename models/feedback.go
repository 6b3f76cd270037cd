package models

import "time"

// FeedbackMessage is one message in the post-resolution conversation between
// the client and the staff, separate from the internal chat.
type FeedbackMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClaimID   uint      `json:"claim_id" gorm:"not null;index:idx_feedback_messages_claim_created"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_feedback_messages_claim_created"`
}

func (FeedbackMessage) TableName() string {
	return "feedback_messages"
}

type FeedbackMessageCreate struct {
	Message string `json:"message" binding:"required"`
}
