package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/db"
)

// The messaging and auth services talk to storage through these narrow
// contracts so the business rules stay testable without a database. The pgx
// repositories satisfy them, via a thin adapter for the roster.

// RosterStore resolves audience targets within a tenant.
type RosterStore interface {
	GetClassByID(ctx context.Context, schoolID, classID int64) (*models.Class, error)
	GetStudentByID(ctx context.Context, schoolID, studentID int64) (*models.Student, error)
	FindStudentsByClass(ctx context.Context, schoolID, classID int64) ([]models.Student, error)
}

// GuardianStore looks up the active guardian accounts of a student.
type GuardianStore interface {
	FindActiveGuardianIDs(ctx context.Context, studentID int64) ([]int64, error)
}

// ConversationStore persists conversations, participants and messages.
// Create, AddParticipants and CreateMessage run inside the caller-supplied
// transaction; the read paths go straight to the pool.
type ConversationStore interface {
	Create(ctx context.Context, tx pgx.Tx, conv *models.Conversation) (int64, error)
	AddParticipants(ctx context.Context, tx pgx.Tx, conversationID int64, userIDs []int64) error
	CreateMessage(ctx context.Context, tx pgx.Tx, msg *models.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	GetParticipant(ctx context.Context, conversationID, userID int64) (*models.Participant, error)
	ListParticipants(ctx context.Context, conversationID int64) ([]models.Participant, error)
	ListMessages(ctx context.Context, conversationID int64, before *time.Time, limit int) ([]models.Message, error)
	ListByParticipant(ctx context.Context, schoolID, userID int64) ([]models.ConversationSummary, error)
	TouchLastRead(ctx context.Context, tx pgx.Tx, conversationID, userID int64, when time.Time) error
	SetStatus(ctx context.Context, conversationID int64, status models.ConversationStatus) error
}

// AccountStore covers the user rows the auth flows read and mutate.
type AccountStore interface {
	Create(ctx context.Context, tx pgx.Tx, user *models.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ActivateWithPassword(ctx context.Context, tx pgx.Tx, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64, when time.Time) error
}

// ActivationTokenStore looks up and consumes one-time activation tokens.
// MarkUsed reports whether this call consumed the token.
type ActivationTokenStore interface {
	FindByToken(ctx context.Context, token string) (*models.ActivationToken, error)
	MarkUsed(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
}

// SchoolStore creates the tenant row during registration.
type SchoolStore interface {
	Create(ctx context.Context, tx pgx.Tx, school *models.School) (int64, error)
}

// TxRunner provides commit-or-rollback execution. db.PostgresDB satisfies it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// Notifier is invoked after a conversation-creating transaction commits.
// Delivery is best effort and never affects the request outcome.
type Notifier interface {
	ConversationCreated(conversationID int64, recipientIDs []int64)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// ConversationCreated implements Notifier
func (NopNotifier) ConversationCreated(int64, []int64) {}
