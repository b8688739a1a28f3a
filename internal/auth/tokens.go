package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/pkg/db/models"
)

// TokenRepository persists issued token records, which back server-side
// revocation on top of the signed JWTs.
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository constructs a token repo bound to the provided GORM DB.
func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// ReplaceActive deactivates every active token the user holds and inserts the
// replacement records in the same transaction, enforcing the single-active-pair
// policy.
func (r *TokenRepository) ReplaceActive(ctx context.Context, userID uuid.UUID, tokens []*models.Token) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deactivateUserTokens(tx, userID); err != nil {
			return err
		}
		for _, token := range tokens {
			if token.ID == uuid.Nil {
				token.ID = uuid.New()
			}
			if err := tx.Create(token).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindActive returns the token record matching the raw string when it is still
// active and unexpired.
func (r *TokenRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.Token, error) {
	var record models.Token
	err := r.db.WithContext(ctx).
		Where("token = ? AND is_active = ? AND expires_at > ?", token, true, now).
		First(&record).
		Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeactivateAllForUser marks every active token the user holds inactive.
func (r *TokenRepository) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error {
	return deactivateUserTokens(r.db.WithContext(ctx), userID)
}

func deactivateUserTokens(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&models.Token{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).
		Error
}
