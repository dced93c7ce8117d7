package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/db"
)

// TokenRepository handles database operations for refresh tokens
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// Save stores a new refresh token
func (r *TokenRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	sql, args, err := squirrel.Insert("refresh_tokens").
		Columns("user_id", "token", "expires_at", "revoked", "created_at").
		Values(token.UserID, token.Token, token.ExpiresAt, token.Revoked, token.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&token.ID); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// Find retrieves a refresh token by its value, returning nil when absent
func (r *TokenRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := squirrel.Select("id", "user_id", "token", "expires_at", "revoked", "created_at").
		From("refresh_tokens").
		Where("token = ?", token).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var t models.RefreshToken
	err = r.q(ctx).QueryRow(ctx, sql, args...).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &t, nil
}

// Revoke marks a refresh token as revoked
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	sql, args, err := squirrel.Update("refresh_tokens").
		Set("revoked", true).
		Where("token = ?", token).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("no rows affected")
	}

	return nil
}
