package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ContextEmployeeKey ctxKey = "employee"

// CurrentEmployee is the authenticated identity carried in request context.
type CurrentEmployee struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func EmployeeFromContext(ctx context.Context) (*CurrentEmployee, bool) {
	emp, ok := ctx.Value(ContextEmployeeKey).(*CurrentEmployee)
	return emp, ok
}

func ContextWithEmployee(ctx context.Context, emp *CurrentEmployee) context.Context {
	return context.WithValue(ctx, ContextEmployeeKey, emp)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	EmployeeID int64  `json:"employee_id"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenGeneratorAPI creates and validates signed session tokens.
type TokenGeneratorAPI interface {
	GenerateAccessToken(emp *CurrentEmployee) (string, error)
	GenerateRefreshToken(emp *CurrentEmployee) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Token lifetimes for the one-time email flows.
const (
	VerificationTokenTTL  = 24 * time.Hour
	PasswordResetTokenTTL = time.Hour
	ActivationTokenTTL    = 24 * time.Hour
)

// VerificationToken is the single-use email verification record. Rows past
// ExpiresAt are treated as absent and purged on read.
type VerificationToken struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null"`
	Token      string    `gorm:"uniqueIndex;not null"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// PasswordResetToken is the single-use reset record with a one hour window.
type PasswordResetToken struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null"`
	Token      string    `gorm:"uniqueIndex;not null"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// ActivationToken binds an invitation to an invitee's email and name. Stored
// durably so invitations survive server restarts.
type ActivationToken struct {
	ID        int64     `gorm:"primaryKey"`
	Token     string    `gorm:"uniqueIndex;not null"`
	Email     string    `gorm:"not null"`
	FullName  string    `gorm:"column:full_name"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ActivationToken) TableName() string {
	return "activation_tokens"
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
