package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emrekaya/classline/internal/app/models"
)

// ConversationRepository handles database operations for conversations,
// their participants and messages. Creation paths are transaction-aware so
// the aggregate (conversation + participants + first message) commits or
// rolls back as one unit.
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a new conversation within the given transaction
func (r *ConversationRepository) Create(ctx context.Context, tx pgx.Tx, conv *models.Conversation) (int64, error) {
	query := `
		INSERT INTO conversations (school_id, subject, status, audience_type, audience_target_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		conv.SchoolID,
		conv.Subject,
		conv.Status,
		conv.AudienceType,
		conv.AudienceTargetID,
		conv.CreatedBy,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating conversation: %w", err)
	}

	return conv.ID, nil
}

// AddParticipants inserts one participant row per account within the given
// transaction
func (r *ConversationRepository) AddParticipants(ctx context.Context, tx pgx.Tx, conversationID int64, userIDs []int64) error {
	queryBuilder := squirrel.Insert("conversation_participants").
		Columns("conversation_id", "user_id").
		PlaceholderFormat(squirrel.Dollar)

	for _, userID := range userIDs {
		queryBuilder = queryBuilder.Values(conversationID, userID)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error adding participants: %w", err)
	}

	return nil
}

// CreateMessage inserts a message. When tx is nil the pool is used directly.
func (r *ConversationRepository) CreateMessage(ctx context.Context, tx pgx.Tx, msg *models.Message) (int64, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	row := queryRow(r.db, tx, ctx, query, msg.ConversationID, msg.SenderID, msg.Body)
	if err := row.Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return 0, fmt.Errorf("error creating message: %w", err)
	}

	return msg.ID, nil
}

// GetByID retrieves a conversation by ID, nil when absent
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `
		SELECT id, school_id, subject, status, audience_type, audience_target_id, created_by, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	var conv models.Conversation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.SchoolID,
		&conv.Subject,
		&conv.Status,
		&conv.AudienceType,
		&conv.AudienceTargetID,
		&conv.CreatedBy,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return &conv, nil
}

// GetParticipant retrieves the participant row for an account, nil when the
// account is not a member of the conversation
func (r *ConversationRepository) GetParticipant(ctx context.Context, conversationID, userID int64) (*models.Participant, error) {
	query := `
		SELECT id, conversation_id, user_id, last_read_at, created_at
		FROM conversation_participants
		WHERE conversation_id = $1 AND user_id = $2
	`

	var p models.Participant
	err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(
		&p.ID,
		&p.ConversationID,
		&p.UserID,
		&p.LastReadAt,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving participant: %w", err)
	}

	return &p, nil
}

// ListParticipants retrieves every participant of a conversation with their
// accounts
func (r *ConversationRepository) ListParticipants(ctx context.Context, conversationID int64) ([]models.Participant, error) {
	query := `
		SELECT p.id, p.conversation_id, p.user_id, p.last_read_at, p.created_at,
			u.id, u.school_id, u.email, u.first_name, u.last_name, u.role_type, u.is_active
		FROM conversation_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.conversation_id = $1
		ORDER BY p.id
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var user models.User
		err := rows.Scan(
			&p.ID,
			&p.ConversationID,
			&p.UserID,
			&p.LastReadAt,
			&p.CreatedAt,
			&user.ID,
			&user.SchoolID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.RoleType,
			&user.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		p.User = &user
		participants = append(participants, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}

	return participants, nil
}

// ListMessages retrieves messages of a conversation newest first, with an
// optional before-cursor
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int64, before *time.Time, limit int) ([]models.Message, error) {
	queryBuilder := squirrel.Select(
		"m.id", "m.conversation_id", "m.sender_id", "m.body", "m.created_at",
		"u.id", "u.school_id", "u.email", "u.first_name", "u.last_name", "u.role_type", "u.is_active",
	).
		From("messages m").
		Join("users u ON u.id = m.sender_id").
		Where("m.conversation_id = ?", conversationID).
		OrderBy("m.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if before != nil {
		queryBuilder = queryBuilder.Where("m.created_at < ?", *before)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var sender models.User
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Body,
			&msg.CreatedAt,
			&sender.ID,
			&sender.SchoolID,
			&sender.Email,
			&sender.FirstName,
			&sender.LastName,
			&sender.RoleType,
			&sender.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		msg.Sender = &sender
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// ListByParticipant retrieves every conversation an account participates in,
// newest activity first, with the caller's unread state
func (r *ConversationRepository) ListByParticipant(ctx context.Context, schoolID, userID int64) ([]models.ConversationSummary, error) {
	query := `
		SELECT c.id, c.school_id, c.subject, c.status, c.created_by, c.created_at, c.updated_at,
			(SELECT MAX(m.created_at) FROM messages m WHERE m.conversation_id = c.id) AS last_message_at,
			p.last_read_at
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE c.school_id = $1 AND p.user_id = $2
		ORDER BY last_message_at DESC NULLS LAST
	`

	rows, err := r.db.Query(ctx, query, schoolID, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	var summaries []models.ConversationSummary
	for rows.Next() {
		var s models.ConversationSummary
		err := rows.Scan(
			&s.ID,
			&s.SchoolID,
			&s.Subject,
			&s.Status,
			&s.CreatedBy,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.LastMessageAt,
			&s.LastReadAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}
		s.Unread = s.LastMessageAt != nil && (s.LastReadAt == nil || s.LastReadAt.Before(*s.LastMessageAt))
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return summaries, nil
}

// TouchLastRead advances a participant's last-read marker. When tx is nil
// the pool is used directly. Idempotent; repeated calls only move the
// timestamp forward.
func (r *ConversationRepository) TouchLastRead(ctx context.Context, tx pgx.Tx, conversationID, userID int64, when time.Time) error {
	query := `
		UPDATE conversation_participants
		SET last_read_at = $3
		WHERE conversation_id = $1 AND user_id = $2
			AND (last_read_at IS NULL OR last_read_at < $3)
	`

	if _, err := exec(r.db, tx, ctx, query, conversationID, userID, when); err != nil {
		return fmt.Errorf("error updating last read marker: %w", err)
	}

	return nil
}

// SetStatus updates a conversation's status
func (r *ConversationRepository) SetStatus(ctx context.Context, conversationID int64, status models.ConversationStatus) error {
	query := `UPDATE conversations SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, conversationID, status)
	if err != nil {
		return fmt.Errorf("error updating conversation status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no conversation found with ID %d", conversationID)
	}

	return nil
}
