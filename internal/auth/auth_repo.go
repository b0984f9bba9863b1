package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/store"
	"gorm.io/gorm"
)

type AuthRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenString string) (*RefreshToken, error)
	// RotateRefreshToken revokes old and stores next in one transaction. It fails with
	// ErrNotFound when old was already revoked or has expired.
	RotateRefreshToken(ctx context.Context, old string, next *RefreshToken) error
	InvalidateRefreshToken(ctx context.Context, userID, tokenString string) error
	InvalidateAllRefreshTokensForUser(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type authRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	return store.Wrap(r.db.WithContext(ctx).Create(token).Error)
}

func (r *authRepository) GetRefreshToken(ctx context.Context, tokenString string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ? AND revoked = ?", tokenString, time.Now().UTC(), false).First(&rt).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return &rt, nil
}

func (r *authRepository) RotateRefreshToken(ctx context.Context, old string, next *RefreshToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RefreshToken{}).
			Where("token = ? AND user_id = ? AND revoked = ? AND expires_at > ?", old, next.UserID, false, time.Now().UTC()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// someone else rotated it first
			return gorm.ErrRecordNotFound
		}
		return tx.Create(next).Error
	})
	return store.Wrap(err)
}

func (r *authRepository) InvalidateRefreshToken(ctx context.Context, userID, tokenString string) error {
	return store.Wrap(r.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("token = ? AND user_id = ?", tokenString, userID).
		Update("revoked", true).Error)
}

func (r *authRepository) InvalidateAllRefreshTokensForUser(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)

	if result.Error != nil {
		return store.Wrap(fmt.Errorf("failed to invalidate all refresh tokens: %w", result.Error))
	}
	return nil
}

func (r *authRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ? OR revoked = ?", before.UTC(), true).Delete(&RefreshToken{})
	if res.Error != nil {
		return 0, store.Wrap(res.Error)
	}
	return res.RowsAffected, nil
}
