package dto

import (
	"time"

	"github.com/emrekaya/classline/internal/app/models"
)

// CreateConversationRequest starts a conversation toward an audience.
// Audience is either a whole class or a single student; recipients are the
// active guardian accounts of the targeted students.
type CreateConversationRequest struct {
	AudienceType string `json:"audienceType" binding:"required,oneof=CLASS STUDENT" example:"CLASS"`
	TargetID     int64  `json:"targetId" binding:"required,min=1" example:"3"`
	Subject      string `json:"subject" binding:"omitempty,max=200" example:"Field trip on Friday"`
	Body         string `json:"body" binding:"required" example:"Please sign the permission slip."`
}

// CreateMessageRequest appends a message to a conversation
type CreateMessageRequest struct {
	Body string `json:"body" binding:"required" example:"Thank you, will do."`
}

// SetStatusRequest changes the conversation status
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN CLOSED" example:"CLOSED"`
}

// ConversationMessageResponse is the external representation of a message
type ConversationMessageResponse struct {
	ID        int64         `json:"id" example:"42"`
	SenderID  int64         `json:"senderId" example:"7"`
	Body      string        `json:"body"`
	Sender    *UserResponse `json:"sender,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ToConversationMessageResponse converts a model.Message
func ToConversationMessageResponse(msg *models.Message) ConversationMessageResponse {
	if msg == nil {
		return ConversationMessageResponse{}
	}
	resp := ConversationMessageResponse{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}
	if msg.Sender != nil {
		sender := ToUserResponse(msg.Sender)
		resp.Sender = &sender
	}
	return resp
}

// ConversationResponse is the external representation of a conversation
type ConversationResponse struct {
	ID            int64      `json:"id" example:"9"`
	Subject       string     `json:"subject" example:"Field trip on Friday"`
	Status        string     `json:"status" example:"OPEN" enums:"OPEN,CLOSED"`
	CreatedBy     int64      `json:"createdBy" example:"2"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	Unread        bool       `json:"unread" example:"true"`
}

// ToConversationSummaryResponse converts a listing row
func ToConversationSummaryResponse(s *models.ConversationSummary) ConversationResponse {
	if s == nil {
		return ConversationResponse{}
	}
	return ConversationResponse{
		ID:            s.ID,
		Subject:       s.Subject,
		Status:        string(s.Status),
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		LastMessageAt: s.LastMessageAt,
		Unread:        s.Unread,
	}
}

// ConversationDetailResponse is a conversation with its messages
type ConversationDetailResponse struct {
	ID               int64                         `json:"id" example:"9"`
	Subject          string                        `json:"subject"`
	Status           string                        `json:"status" example:"OPEN"`
	AudienceType     string                        `json:"audienceType" example:"CLASS"`
	AudienceTargetID int64                         `json:"audienceTargetId" example:"3"`
	CreatedBy        int64                         `json:"createdBy"`
	CreatedAt        time.Time                     `json:"createdAt"`
	Participants     []UserResponse                `json:"participants,omitempty"`
	Messages         []ConversationMessageResponse `json:"messages"`
}

// ConversationListResponse is the payload for conversation listing
type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// CreateConversationResponse carries the new conversation identifier
type CreateConversationResponse struct {
	ConversationID int64 `json:"conversationId" example:"9"`
}

// CreateMessageResponse carries the new message identifier
type CreateMessageResponse struct {
	MessageID int64 `json:"messageId" example:"42"`
}
