package models

import "time"

// ConversationStatus is the conversation lifecycle state
type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "OPEN"
	ConversationClosed ConversationStatus = "CLOSED"
)

// Valid reports whether the status is a known state.
func (s ConversationStatus) Valid() bool {
	return s == ConversationOpen || s == ConversationClosed
}

// AudienceType selects how conversation recipients are resolved
type AudienceType string

const (
	AudienceClass   AudienceType = "CLASS"
	AudienceStudent AudienceType = "STUDENT"
)

// Conversation defines the conversation model based on the 'conversations'
// table. A conversation exclusively owns its participants and messages.
type Conversation struct {
	ID               int64              `json:"id" db:"id"`
	SchoolID         int64              `json:"schoolId" db:"school_id"`
	Subject          string             `json:"subject" db:"subject"`
	Status           ConversationStatus `json:"status" db:"status" example:"OPEN"`
	AudienceType     AudienceType       `json:"audienceType" db:"audience_type" example:"CLASS"`
	AudienceTargetID int64              `json:"audienceTargetId" db:"audience_target_id"`
	CreatedBy        int64              `json:"createdBy" db:"created_by"`
	CreatedAt        time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" db:"updated_at"`
}

// Participant joins an account to a conversation and carries the
// per-participant last-read marker.
type Participant struct {
	ID             int64      `json:"id" db:"id"`
	ConversationID int64      `json:"conversationId" db:"conversation_id"`
	UserID         int64      `json:"userId" db:"user_id"`
	LastReadAt     *time.Time `json:"lastReadAt,omitempty" db:"last_read_at"`
	User           *User      `json:"user,omitempty"` // Relation, no db tag
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// Message belongs to one conversation, immutable once created.
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	Body           string    `json:"body" db:"body"`
	Sender         *User     `json:"sender,omitempty"` // Relation, no db tag
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// ConversationSummary is a listing row: the conversation plus the caller's
// unread state and the newest message time.
type ConversationSummary struct {
	Conversation
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
	LastReadAt    *time.Time `json:"lastReadAt,omitempty" db:"last_read_at"`
	Unread        bool       `json:"unread"`
}
