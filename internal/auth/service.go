package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/mailer"
)

// ErrInvalidOrExpiredToken covers every one-time token miss: unknown token,
// consumed token, or one past its window. Callers cannot tell which.
var ErrInvalidOrExpiredToken = internal.NewNotFoundError("Invalid or expired token", internal.ErrCodeInvalidToken)

// EmployeeDirectory is the slice of the employee repository the auth flows
// need.
type EmployeeDirectory interface {
	Create(emp *employee.Employee) error
	GetByID(id int64) (*employee.Employee, error)
	GetByEmail(email string) (*employee.Employee, error)
	Update(emp *employee.Employee) error
}

// TokenRepository persists the one-time token records. Lookups must treat
// expired rows as absent and purge them.
type TokenRepository interface {
	CreateVerificationToken(t *VerificationToken) error
	GetVerificationToken(token string) (*VerificationToken, error)
	DeleteVerificationToken(id int64) error

	CreatePasswordResetToken(t *PasswordResetToken) error
	GetPasswordResetToken(token string) (*PasswordResetToken, error)
	DeletePasswordResetToken(id int64) error
	DeleteResetTokensForEmployee(employeeID int64) error

	CreateActivationToken(t *ActivationToken) error
	GetActivationToken(token string) (*ActivationToken, error)
	DeleteActivationToken(id int64) error
	DeleteActivationTokensForEmail(email string) error
}

type Service struct {
	directory  EmployeeDirectory
	tokens     TokenRepository
	tokenGen   TokenGeneratorAPI
	mailer     mailer.Mailer
	baseURL    string
	bcryptCost int
	logger     *slog.Logger
}

func NewService(directory EmployeeDirectory, tokens TokenRepository, tokenGen TokenGeneratorAPI, m mailer.Mailer, baseURL string, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		directory:  directory,
		tokens:     tokens,
		tokenGen:   tokenGen,
		mailer:     m,
		baseURL:    baseURL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignUp creates an unverified account and emails a verification link.
func (s *Service) SignUp(ctx context.Context, dto SignUpDTO) (*employee.Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.directory.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	emp := &employee.Employee{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		IsActive:     true,
		TaskIDs:      []int64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.directory.Create(emp); err != nil {
		s.logger.Error("signup: failed to create employee", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create account", err)
	}

	if err := s.issueVerificationToken(ctx, emp); err != nil {
		// account exists; the user can request a new verification email
		s.logger.Error("signup: failed to send verification email", "error", err, "employee_id", emp.ID)
	}

	s.logger.Info("employee signed up", "employee_id", emp.ID, "email", emp.Email)
	return emp, nil
}

func (s *Service) issueVerificationToken(ctx context.Context, emp *employee.Employee) error {
	token, err := GenerateRandomToken()
	if err != nil {
		return err
	}
	record := &VerificationToken{
		EmployeeID: emp.ID,
		Token:      token,
		ExpiresAt:  time.Now().Add(VerificationTokenTTL),
		CreatedAt:  time.Now(),
	}
	if err := s.tokens.CreateVerificationToken(record); err != nil {
		return err
	}
	return s.mailer.Send(ctx, mailer.VerificationMessage(emp.Email, emp.FirstName, s.baseURL, token))
}

// SignIn checks the account in sequence: existence and password first (their
// failures are indistinguishable to the caller), then email verification,
// then the active flag. On success the employee's address and last login are
// refreshed so the screenshot relay can find their machine.
func (s *Service) SignIn(dto SignInDTO, remoteIP string) (AuthTokens, *employee.Employee, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, nil, err
	}

	emp, err := s.directory.GetByEmail(dto.Email)
	if err != nil || emp == nil {
		return AuthTokens{}, nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, nil, internal.ErrInvalidCredentials
	}

	if !emp.EmailVerified {
		return AuthTokens{}, nil, internal.ErrEmailNotVerified
	}

	if !emp.IsActive {
		return AuthTokens{}, nil, internal.ErrAccountInactive
	}

	now := time.Now()
	emp.LastKnownIP = remoteIP
	emp.LastLoginAt = &now
	emp.UpdatedAt = now
	if err := s.directory.Update(emp); err != nil {
		s.logger.Error("signin: failed to record address", "error", err, "employee_id", emp.ID)
	}

	tokens, err := s.generateTokens(emp)
	if err != nil {
		return AuthTokens{}, nil, internal.NewInternalError("failed to generate tokens", err)
	}

	s.logger.Info("employee signed in", "employee_id", emp.ID, "remote_ip", remoteIP)
	return tokens, emp, nil
}

func (s *Service) generateTokens(emp *employee.Employee) (AuthTokens, error) {
	current := &CurrentEmployee{ID: emp.ID, Email: emp.Email, IsAdmin: emp.IsAdmin}

	access, err := s.tokenGen.GenerateAccessToken(current)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.tokenGen.GenerateRefreshToken(current)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	emp, err := s.directory.GetByID(claims.EmployeeID)
	if err != nil || emp == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !emp.IsActive {
		return AuthTokens{}, internal.ErrAccountInactive
	}

	return s.generateTokens(emp)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(token string) error {
	record, err := s.tokens.GetVerificationToken(token)
	if err != nil || record == nil {
		return ErrInvalidOrExpiredToken
	}

	emp, err := s.directory.GetByID(record.EmployeeID)
	if err != nil || emp == nil {
		return internal.ErrEmployeeNotFound
	}

	emp.EmailVerified = true
	emp.UpdatedAt = time.Now()
	if err := s.directory.Update(emp); err != nil {
		return internal.NewInternalError("failed to verify email", err)
	}

	if err := s.tokens.DeleteVerificationToken(record.ID); err != nil {
		s.logger.Error("failed to delete verification token", "error", err, "token_id", record.ID)
	}

	s.logger.Info("email verified", "employee_id", emp.ID)
	return nil
}

// RequestPasswordReset always reports success so callers cannot probe which
// emails are registered. The actual work only happens for known accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	emp, err := s.directory.GetByEmail(dto.Email)
	if err != nil || emp == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	if err := s.tokens.DeleteResetTokensForEmployee(emp.ID); err != nil {
		s.logger.Error("failed to invalidate prior reset tokens", "error", err, "employee_id", emp.ID)
	}

	token, err := GenerateRandomToken()
	if err != nil {
		return internal.NewInternalError("failed to generate reset token", err)
	}
	record := &PasswordResetToken{
		EmployeeID: emp.ID,
		Token:      token,
		ExpiresAt:  time.Now().Add(PasswordResetTokenTTL),
		CreatedAt:  time.Now(),
	}
	if err := s.tokens.CreatePasswordResetToken(record); err != nil {
		return internal.NewInternalError("failed to store reset token", err)
	}

	if err := s.mailer.Send(ctx, mailer.PasswordResetMessage(emp.Email, emp.FirstName, s.baseURL, token)); err != nil {
		s.logger.Error("failed to send reset email", "error", err, "employee_id", emp.ID)
	}

	s.logger.Info("password reset token issued", "employee_id", emp.ID)
	return nil
}

// ResetPassword consumes a reset token and updates the credential hash.
func (s *Service) ResetPassword(token string, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	record, err := s.tokens.GetPasswordResetToken(token)
	if err != nil || record == nil {
		return ErrInvalidOrExpiredToken
	}

	emp, err := s.directory.GetByID(record.EmployeeID)
	if err != nil || emp == nil {
		return internal.ErrEmployeeNotFound
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	emp.PasswordHash = hash
	emp.UpdatedAt = time.Now()
	if err := s.directory.Update(emp); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	if err := s.tokens.DeletePasswordResetToken(record.ID); err != nil {
		s.logger.Error("failed to delete reset token", "error", err, "token_id", record.ID)
	}

	s.logger.Info("password reset", "employee_id", emp.ID)
	return nil
}

// SendActivationEmail issues an invitation token for a prospective employee.
// A fresh invitation replaces any outstanding one for the same email.
func (s *Service) SendActivationEmail(ctx context.Context, dto SendActivationDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if existing, err := s.directory.GetByEmail(dto.Email); err == nil && existing != nil && existing.EmailVerified {
		return internal.ErrEmailTaken
	}

	if err := s.tokens.DeleteActivationTokensForEmail(dto.Email); err != nil {
		s.logger.Error("failed to clear prior invitations", "error", err, "email", dto.Email)
	}

	token, err := GenerateRandomToken()
	if err != nil {
		return internal.NewInternalError("failed to generate activation token", err)
	}
	record := &ActivationToken{
		Token:     token,
		Email:     dto.Email,
		FullName:  dto.FullName,
		ExpiresAt: time.Now().Add(ActivationTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.CreateActivationToken(record); err != nil {
		return internal.NewInternalError("failed to store activation token", err)
	}

	if err := s.mailer.Send(ctx, mailer.InvitationMessage(dto.Email, dto.FullName, s.baseURL, token)); err != nil {
		s.logger.Error("failed to send invitation email", "error", err, "email", dto.Email)
		return internal.NewInternalError("failed to send invitation email", err)
	}

	s.logger.Info("invitation sent", "email", dto.Email)
	return nil
}

// ActivationStatus is the verify-activation-token response.
type ActivationStatus struct {
	Valid    bool   `json:"valid"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// VerifyActivationToken reports whether an invitation is still usable.
// Unknown and expired tokens both come back valid:false rather than as
// errors; expired rows are purged by the lookup.
func (s *Service) VerifyActivationToken(token string) ActivationStatus {
	record, err := s.tokens.GetActivationToken(token)
	if err != nil || record == nil {
		return ActivationStatus{Valid: false}
	}
	return ActivationStatus{Valid: true, Email: record.Email, FullName: record.FullName}
}

// ActivateAccount consumes an invitation: it creates the account (or
// upgrades a pre-existing unverified one), marks it verified and active, and
// deletes the token.
func (s *Service) ActivateAccount(token string, dto ActivateAccountDTO) (*employee.Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.tokens.GetActivationToken(token)
	if err != nil || record == nil {
		return nil, ErrInvalidOrExpiredToken
	}

	fullName := strings.TrimSpace(dto.FullName)
	if fullName == "" {
		fullName = record.FullName
	}
	firstName, lastName := splitFullName(fullName)

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	emp, err := s.directory.GetByEmail(record.Email)
	if err == nil && emp != nil {
		if emp.EmailVerified {
			return nil, internal.ErrEmailTaken
		}
		emp.FirstName = firstName
		emp.LastName = lastName
		emp.PasswordHash = hash
		emp.EmailVerified = true
		emp.IsActive = true
		emp.UpdatedAt = now
		if err := s.directory.Update(emp); err != nil {
			return nil, internal.NewInternalError("failed to activate account", err)
		}
	} else {
		emp = &employee.Employee{
			FirstName:     firstName,
			LastName:      lastName,
			Email:         record.Email,
			PasswordHash:  hash,
			IsActive:      true,
			EmailVerified: true,
			TaskIDs:       []int64{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.directory.Create(emp); err != nil {
			return nil, internal.NewInternalError("failed to create account", err)
		}
	}

	if err := s.tokens.DeleteActivationToken(record.ID); err != nil {
		s.logger.Error("failed to delete activation token", "error", err, "token_id", record.ID)
	}

	s.logger.Info("account activated", "employee_id", emp.ID, "email", emp.Email)
	return emp, nil
}

// CurrentEmployeeByID resolves the context identity for the auth middleware.
func (s *Service) CurrentEmployeeByID(id int64) (*CurrentEmployee, error) {
	emp, err := s.directory.GetByID(id)
	if err != nil || emp == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	if !emp.IsActive {
		return nil, internal.ErrAccountInactive
	}
	return &CurrentEmployee{ID: emp.ID, Email: emp.Email, IsAdmin: emp.IsAdmin}, nil
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
