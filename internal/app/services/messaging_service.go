package services

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	appauth "github.com/emrekaya/classline/internal/app/auth"
	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
)

// Actor identifies the authenticated caller of a messaging operation.
// Populated from the JWT claims by the controllers.
type Actor struct {
	UserID   int64
	SchoolID int64
	Role     models.RoleType
}

// Audience selects the recipients of a new conversation: either every
// student of a class or a single student. Recipients are always the active
// guardian accounts of the targeted students.
type Audience struct {
	Type     models.AudienceType
	TargetID int64
}

// MessagingService defines the interface for conversation operations
type MessagingService interface {
	ResolveRecipients(ctx context.Context, schoolID int64, audience Audience) ([]int64, error)
	CreateConversation(ctx context.Context, actor Actor, audience Audience, subject, body string) (int64, error)
	PostMessage(ctx context.Context, actor Actor, conversationID int64, body string) (int64, error)
	MarkRead(ctx context.Context, actor Actor, conversationID int64) error
	SetStatus(ctx context.Context, actor Actor, conversationID int64, status models.ConversationStatus) error
	ListConversations(ctx context.Context, actor Actor) ([]dto.ConversationResponse, error)
	GetConversation(ctx context.Context, actor Actor, conversationID int64, before *time.Time, limit int) (*dto.ConversationDetailResponse, error)
}

// messagingServiceImpl implements MessagingService
type messagingServiceImpl struct {
	roster        RosterStore
	guardians     GuardianStore
	conversations ConversationStore
	tx            TxRunner
	notifier      Notifier
	logger        zerolog.Logger
	now           func() time.Time
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(
	roster RosterStore,
	guardians GuardianStore,
	conversations ConversationStore,
	tx TxRunner,
	notifier Notifier,
	logger zerolog.Logger,
) MessagingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &messagingServiceImpl{
		roster:        roster,
		guardians:     guardians,
		conversations: conversations,
		tx:            tx,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// ResolveRecipients translates an audience into the deduplicated set of
// active guardian account IDs. Guardians of several students in the same
// class appear once. Inactive guardians are silently excluded; an audience
// whose every guardian is inactive yields ErrEmptyAudience.
func (s *messagingServiceImpl) ResolveRecipients(ctx context.Context, schoolID int64, audience Audience) ([]int64, error) {
	var students []models.Student

	switch audience.Type {
	case models.AudienceClass:
		class, err := s.roster.GetClassByID(ctx, schoolID, audience.TargetID)
		if err != nil {
			return nil, err
		}
		if class == nil {
			return nil, apperrors.NewResourceNotFoundError("Class not found")
		}

		students, err = s.roster.FindStudentsByClass(ctx, schoolID, audience.TargetID)
		if err != nil {
			return nil, err
		}

	case models.AudienceStudent:
		student, err := s.roster.GetStudentByID(ctx, schoolID, audience.TargetID)
		if err != nil {
			return nil, err
		}
		if student == nil {
			return nil, apperrors.NewResourceNotFoundError("Student not found")
		}
		students = append(students, *student)

	default:
		return nil, apperrors.NewValidationError("Unknown audience type")
	}

	seen := make(map[int64]struct{})
	var recipients []int64
	for _, student := range students {
		guardianIDs, err := s.guardians.FindActiveGuardianIDs(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range guardianIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			recipients = append(recipients, id)
		}
	}

	if len(recipients) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrEmptyAudience, "Audience has no active guardian accounts")
	}

	return recipients, nil
}

// CreateConversation resolves the audience, then atomically creates the
// conversation, one participant row per account in {sender} ∪ recipients
// and the first message. Either all three inserts commit or none do; a
// reader never observes a conversation without participants or messages.
//
// Creation is not idempotent: a retried request produces a second,
// independent conversation.
func (s *messagingServiceImpl) CreateConversation(ctx context.Context, actor Actor, audience Audience, subject, body string) (int64, error) {
	if !appauth.Can(actor.Role, appauth.ActionInitiateConversation) {
		return 0, apperrors.NewForbiddenError("Role is not permitted to initiate conversations")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return 0, apperrors.NewValidationError("Message body must not be empty")
	}

	recipients, err := s.ResolveRecipients(ctx, actor.SchoolID, audience)
	if err != nil {
		return 0, err
	}

	// Sender joins the participant set even when also a guardian
	participantIDs := recipients
	isRecipient := false
	for _, id := range recipients {
		if id == actor.UserID {
			isRecipient = true
			break
		}
	}
	if !isRecipient {
		participantIDs = append([]int64{actor.UserID}, recipients...)
	}

	conv := &models.Conversation{
		SchoolID:         actor.SchoolID,
		Subject:          strings.TrimSpace(subject),
		Status:           models.ConversationOpen,
		AudienceType:     audience.Type,
		AudienceTargetID: audience.TargetID,
		CreatedBy:        actor.UserID,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.conversations.Create(ctx, tx, conv); err != nil {
			return err
		}

		if err := s.conversations.AddParticipants(ctx, tx, conv.ID, participantIDs); err != nil {
			return err
		}

		msg := &models.Message{
			ConversationID: conv.ID,
			SenderID:       actor.UserID,
			Body:           body,
		}
		if _, err := s.conversations.CreateMessage(ctx, tx, msg); err != nil {
			return err
		}

		// The sender has definitionally read up to their own message
		return s.conversations.TouchLastRead(ctx, tx, conv.ID, actor.UserID, s.now())
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("senderID", actor.UserID).
			Int64("schoolID", actor.SchoolID).
			Msg("Failed to create conversation aggregate")
		return 0, apperrors.NewPersistenceError(err)
	}

	// Dispatch only after the transaction is committed
	s.notifier.ConversationCreated(conv.ID, recipients)

	s.logger.Info().
		Int64("conversationID", conv.ID).
		Int("participants", len(participantIDs)).
		Msg("Conversation created")

	return conv.ID, nil
}

// guard enforces the access contract shared by every conversation
// operation: same tenant and participant membership. A missing
// conversation, a cross-tenant conversation and a non-member all produce
// the same ErrConversationAccess so existence never leaks.
func (s *messagingServiceImpl) guard(ctx context.Context, actor Actor, conversationID int64) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.SchoolID != actor.SchoolID {
		return nil, apperrors.NewCustomError(apperrors.ErrConversationAccess, "Conversation access denied")
	}

	participant, err := s.conversations.GetParticipant(ctx, conversationID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrConversationAccess, "Conversation access denied")
	}

	return conv, nil
}

// PostMessage appends a message to an open conversation the actor
// participates in. The sender's own last-read marker advances with the
// message; no other participant's marker changes.
func (s *messagingServiceImpl) PostMessage(ctx context.Context, actor Actor, conversationID int64, body string) (int64, error) {
	conv, err := s.guard(ctx, actor, conversationID)
	if err != nil {
		return 0, err
	}

	if conv.Status == models.ConversationClosed {
		return 0, apperrors.NewCustomError(apperrors.ErrConversationClosed, "Conversation is closed")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return 0, apperrors.NewValidationError("Message body must not be empty")
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       actor.UserID,
		Body:           body,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.conversations.CreateMessage(ctx, tx, msg); err != nil {
			return err
		}
		return s.conversations.TouchLastRead(ctx, tx, conversationID, actor.UserID, s.now())
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("conversationID", conversationID).
			Int64("senderID", actor.UserID).
			Msg("Failed to post message")
		return 0, apperrors.NewPersistenceError(err)
	}

	return msg.ID, nil
}

// MarkRead advances the actor's last-read marker to now. Idempotent:
// calling twice leaves the same observable state as calling once.
func (s *messagingServiceImpl) MarkRead(ctx context.Context, actor Actor, conversationID int64) error {
	if _, err := s.guard(ctx, actor, conversationID); err != nil {
		return err
	}

	return s.conversations.TouchLastRead(ctx, nil, conversationID, actor.UserID, s.now())
}

// SetStatus transitions a conversation between OPEN and CLOSED. Only staff
// roles may change status; reads stay permitted on closed conversations.
func (s *messagingServiceImpl) SetStatus(ctx context.Context, actor Actor, conversationID int64, status models.ConversationStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("Unknown conversation status")
	}

	if _, err := s.guard(ctx, actor, conversationID); err != nil {
		return err
	}

	if !appauth.Can(actor.Role, appauth.ActionChangeConversationStatus) {
		return apperrors.NewForbiddenError("Role is not permitted to change conversation status")
	}

	return s.conversations.SetStatus(ctx, conversationID, status)
}

// ListConversations retrieves the actor's conversations with unread state
func (s *messagingServiceImpl) ListConversations(ctx context.Context, actor Actor) ([]dto.ConversationResponse, error) {
	summaries, err := s.conversations.ListByParticipant(ctx, actor.SchoolID, actor.UserID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConversationResponse, 0, len(summaries))
	for i := range summaries {
		responses = append(responses, dto.ToConversationSummaryResponse(&summaries[i]))
	}

	return responses, nil
}

// GetConversation retrieves a conversation with participants and messages.
// Reading stays permitted on closed conversations.
func (s *messagingServiceImpl) GetConversation(ctx context.Context, actor Actor, conversationID int64, before *time.Time, limit int) (*dto.ConversationDetailResponse, error) {
	conv, err := s.guard(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	participants, err := s.conversations.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.conversations.ListMessages(ctx, conversationID, before, limit)
	if err != nil {
		return nil, err
	}

	detail := &dto.ConversationDetailResponse{
		ID:               conv.ID,
		Subject:          conv.Subject,
		Status:           string(conv.Status),
		AudienceType:     string(conv.AudienceType),
		AudienceTargetID: conv.AudienceTargetID,
		CreatedBy:        conv.CreatedBy,
		CreatedAt:        conv.CreatedAt,
		Messages:         make([]dto.ConversationMessageResponse, 0, len(messages)),
	}

	for i := range participants {
		if participants[i].User != nil {
			detail.Participants = append(detail.Participants, dto.ToUserResponse(participants[i].User))
		}
	}

	for i := range messages {
		detail.Messages = append(detail.Messages, dto.ToConversationMessageResponse(&messages[i]))
	}

	return detail, nil
}
