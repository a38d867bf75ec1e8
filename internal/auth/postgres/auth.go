package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/auth"
)

var _ auth.TokenRepository = (*TokenRepository)(nil)

// TokenRepository implements auth.TokenRepository using GORM. Expiry is
// enforced in the lookup queries; the database only stores expires_at.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) CreateVerificationToken(t *auth.VerificationToken) error {
	return r.db.Create(t).Error
}

// GetVerificationToken returns a live token or nil. Expired rows for the
// same token are deleted on the way out.
func (r *TokenRepository) GetVerificationToken(token string) (*auth.VerificationToken, error) {
	var record auth.VerificationToken
	err := r.db.Where("token = ?", token).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		r.db.Delete(&auth.VerificationToken{}, record.ID)
		return nil, nil
	}
	return &record, nil
}

func (r *TokenRepository) DeleteVerificationToken(id int64) error {
	return r.db.Delete(&auth.VerificationToken{}, id).Error
}

func (r *TokenRepository) CreatePasswordResetToken(t *auth.PasswordResetToken) error {
	return r.db.Create(t).Error
}

func (r *TokenRepository) GetPasswordResetToken(token string) (*auth.PasswordResetToken, error) {
	var record auth.PasswordResetToken
	err := r.db.Where("token = ?", token).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		r.db.Delete(&auth.PasswordResetToken{}, record.ID)
		return nil, nil
	}
	return &record, nil
}

func (r *TokenRepository) DeletePasswordResetToken(id int64) error {
	return r.db.Delete(&auth.PasswordResetToken{}, id).Error
}

func (r *TokenRepository) DeleteResetTokensForEmployee(employeeID int64) error {
	return r.db.Where("employee_id = ?", employeeID).Delete(&auth.PasswordResetToken{}).Error
}

func (r *TokenRepository) CreateActivationToken(t *auth.ActivationToken) error {
	return r.db.Create(t).Error
}

func (r *TokenRepository) GetActivationToken(token string) (*auth.ActivationToken, error) {
	var record auth.ActivationToken
	err := r.db.Where("token = ?", token).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		r.db.Delete(&auth.ActivationToken{}, record.ID)
		return nil, nil
	}
	return &record, nil
}

func (r *TokenRepository) DeleteActivationToken(id int64) error {
	return r.db.Delete(&auth.ActivationToken{}, id).Error
}

func (r *TokenRepository) DeleteActivationTokensForEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&auth.ActivationToken{}).Error
}

// PurgeExpiredTokens removes every token past its window. Run periodically
// from the server command so dead rows do not pile up.
func (r *TokenRepository) PurgeExpiredTokens() error {
	now := time.Now()
	if err := r.db.Where("expires_at < ?", now).Delete(&auth.VerificationToken{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("expires_at < ?", now).Delete(&auth.PasswordResetToken{}).Error; err != nil {
		return err
	}
	return r.db.Where("expires_at < ?", now).Delete(&auth.ActivationToken{}).Error
}
