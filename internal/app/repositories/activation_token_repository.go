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

// ActivationTokenRepository handles database operations for one-time
// account activation tokens
type ActivationTokenRepository struct {
	db *pgxpool.Pool
}

// NewActivationTokenRepository creates a new ActivationTokenRepository
func NewActivationTokenRepository(db *pgxpool.Pool) *ActivationTokenRepository {
	return &ActivationTokenRepository{db: db}
}

// Create stores a new activation token for a user
func (r *ActivationTokenRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := squirrel.Insert("activation_tokens").
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error creating activation token: %w", err)
	}

	return nil
}

// FindByToken retrieves a token row by its value, nil when absent
func (r *ActivationTokenRepository) FindByToken(ctx context.Context, token string) (*models.ActivationToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM activation_tokens
		WHERE token = $1
	`

	var at models.ActivationToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&at.ID,
		&at.UserID,
		&at.Token,
		&at.ExpiresAt,
		&at.UsedAt,
		&at.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving activation token: %w", err)
	}

	return &at, nil
}

// MarkUsed stamps the token as consumed within the given transaction.
// Returns false when the token was already consumed by a concurrent call.
func (r *ActivationTokenRepository) MarkUsed(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	query := `UPDATE activation_tokens SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("error marking activation token used: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// DeleteExpired removes tokens past their expiry, returning the count
func (r *ActivationTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM activation_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired activation tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
