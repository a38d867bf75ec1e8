package auth_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/auth"
	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/mailer"
	"github.com/workpulse/workpulse/pkg/logger"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockDirectory struct {
	byID    map[int64]*employee.Employee
	byEmail map[string]*employee.Employee
	nextID  int64
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		byID:    make(map[int64]*employee.Employee),
		byEmail: make(map[string]*employee.Employee),
		nextID:  1,
	}
}

func (m *mockDirectory) Create(emp *employee.Employee) error {
	emp.ID = m.nextID
	m.nextID++
	m.byID[emp.ID] = emp
	m.byEmail[emp.Email] = emp
	return nil
}

func (m *mockDirectory) GetByID(id int64) (*employee.Employee, error) {
	emp, ok := m.byID[id]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *mockDirectory) GetByEmail(email string) (*employee.Employee, error) {
	emp, ok := m.byEmail[email]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *mockDirectory) Update(emp *employee.Employee) error {
	m.byID[emp.ID] = emp
	m.byEmail[emp.Email] = emp
	return nil
}

// mockTokenRepo keeps token rows in memory and mimics the store-level TTL
// behavior: expired rows are treated as absent and removed on lookup.
type mockTokenRepo struct {
	verification map[string]*auth.VerificationToken
	reset        map[string]*auth.PasswordResetToken
	activation   map[string]*auth.ActivationToken
	nextID       int64
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{
		verification: make(map[string]*auth.VerificationToken),
		reset:        make(map[string]*auth.PasswordResetToken),
		activation:   make(map[string]*auth.ActivationToken),
		nextID:       1,
	}
}

func (m *mockTokenRepo) CreateVerificationToken(t *auth.VerificationToken) error {
	t.ID = m.nextID
	m.nextID++
	m.verification[t.Token] = t
	return nil
}

func (m *mockTokenRepo) GetVerificationToken(token string) (*auth.VerificationToken, error) {
	t, ok := m.verification[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(t.ExpiresAt) {
		delete(m.verification, token)
		return nil, nil
	}
	return t, nil
}

func (m *mockTokenRepo) DeleteVerificationToken(id int64) error {
	for token, t := range m.verification {
		if t.ID == id {
			delete(m.verification, token)
		}
	}
	return nil
}

func (m *mockTokenRepo) CreatePasswordResetToken(t *auth.PasswordResetToken) error {
	t.ID = m.nextID
	m.nextID++
	m.reset[t.Token] = t
	return nil
}

func (m *mockTokenRepo) GetPasswordResetToken(token string) (*auth.PasswordResetToken, error) {
	t, ok := m.reset[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(t.ExpiresAt) {
		delete(m.reset, token)
		return nil, nil
	}
	return t, nil
}

func (m *mockTokenRepo) DeletePasswordResetToken(id int64) error {
	for token, t := range m.reset {
		if t.ID == id {
			delete(m.reset, token)
		}
	}
	return nil
}

func (m *mockTokenRepo) DeleteResetTokensForEmployee(employeeID int64) error {
	for token, t := range m.reset {
		if t.EmployeeID == employeeID {
			delete(m.reset, token)
		}
	}
	return nil
}

func (m *mockTokenRepo) CreateActivationToken(t *auth.ActivationToken) error {
	t.ID = m.nextID
	m.nextID++
	m.activation[t.Token] = t
	return nil
}

func (m *mockTokenRepo) GetActivationToken(token string) (*auth.ActivationToken, error) {
	t, ok := m.activation[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(t.ExpiresAt) {
		delete(m.activation, token)
		return nil, nil
	}
	return t, nil
}

func (m *mockTokenRepo) DeleteActivationToken(id int64) error {
	for token, t := range m.activation {
		if t.ID == id {
			delete(m.activation, token)
		}
	}
	return nil
}

func (m *mockTokenRepo) DeleteActivationTokensForEmail(email string) error {
	for token, t := range m.activation {
		if t.Email == email {
			delete(m.activation, token)
		}
	}
	return nil
}

// recordingMailer captures sent messages instead of sending them.
type recordingMailer struct {
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		directory *mockDirectory
		tokens    *mockTokenRepo
		mails     *recordingMailer
		service   *auth.Service
		ctx       context.Context
	)

	newEmployee := func(email, password string, verified, active bool) *employee.Employee {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		emp := &employee.Employee{
			FirstName:     "Test",
			LastName:      "Employee",
			Email:         email,
			PasswordHash:  string(hash),
			EmailVerified: verified,
			IsActive:      active,
		}
		Expect(directory.Create(emp)).To(Succeed())
		return emp
	}

	BeforeEach(func() {
		directory = newMockDirectory()
		tokens = newMockTokenRepo()
		mails = &recordingMailer{}
		ctx = context.Background()

		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			15*time.Minute,
			7*24*time.Hour,
		)
		service = auth.NewService(directory, tokens, tokenGen, mails, "http://localhost:3000", bcrypt.MinCost, logger.L())
	})

	Describe("SignUp", func() {
		It("creates an unverified active account and emails a verification link", func() {
			emp, err := service.SignUp(ctx, auth.SignUpDTO{
				FirstName: "New",
				LastName:  "Hire",
				Email:     "new@example.com",
				Password:  "password123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.EmailVerified).To(BeFalse())
			Expect(emp.IsActive).To(BeTrue())
			Expect(mails.sent).To(HaveLen(1))
			Expect(mails.sent[0].To).To(Equal("new@example.com"))
		})

		It("rejects a duplicate email with a conflict", func() {
			newEmployee("taken@example.com", "password123", true, true)

			_, err := service.SignUp(ctx, auth.SignUpDTO{
				FirstName: "Another",
				LastName:  "Person",
				Email:     "taken@example.com",
				Password:  "password123",
			})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})
	})

	Describe("SignIn", func() {
		It("merges unknown email and wrong password into one rejection", func() {
			newEmployee("known@example.com", "password123", true, true)

			_, _, unknownErr := service.SignIn(auth.SignInDTO{Email: "nobody@example.com", Password: "password123"}, "10.0.0.1")
			_, _, wrongErr := service.SignIn(auth.SignInDTO{Email: "known@example.com", Password: "wrong-password"}, "10.0.0.1")

			Expect(unknownErr).To(MatchError(internal.ErrInvalidCredentials))
			Expect(wrongErr).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an unverified account distinctly, regardless of the active flag", func() {
			newEmployee("unverified-active@example.com", "password123", false, true)
			newEmployee("unverified-inactive@example.com", "password123", false, false)

			_, _, activeErr := service.SignIn(auth.SignInDTO{Email: "unverified-active@example.com", Password: "password123"}, "10.0.0.1")
			_, _, inactiveErr := service.SignIn(auth.SignInDTO{Email: "unverified-inactive@example.com", Password: "password123"}, "10.0.0.1")

			Expect(activeErr).To(MatchError(internal.ErrEmailNotVerified))
			Expect(inactiveErr).To(MatchError(internal.ErrEmailNotVerified))
			Expect(activeErr).NotTo(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects a verified but deactivated account", func() {
			newEmployee("inactive@example.com", "password123", true, false)

			_, _, err := service.SignIn(auth.SignInDTO{Email: "inactive@example.com", Password: "password123"}, "10.0.0.1")
			Expect(err).To(MatchError(internal.ErrAccountInactive))
		})

		It("records the caller's address and issues both tokens", func() {
			emp := newEmployee("worker@example.com", "password123", true, true)

			tokens, signedIn, err := service.SignIn(auth.SignInDTO{Email: "worker@example.com", Password: "password123"}, "192.168.1.50")
			Expect(err).NotTo(HaveOccurred())
			Expect(signedIn.ID).To(Equal(emp.ID))
			Expect(signedIn.LastKnownIP).To(Equal("192.168.1.50"))
			Expect(signedIn.LastLoginAt).NotTo(BeNil())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})
	})

	Describe("VerifyEmail", func() {
		It("marks the account verified and consumes the token", func() {
			emp, err := service.SignUp(ctx, auth.SignUpDTO{
				FirstName: "New",
				LastName:  "Hire",
				Email:     "verify@example.com",
				Password:  "password123",
			})
			Expect(err).NotTo(HaveOccurred())

			var issued string
			for token := range tokens.verification {
				issued = token
			}
			Expect(issued).NotTo(BeEmpty())

			Expect(service.VerifyEmail(issued)).To(Succeed())
			Expect(directory.byID[emp.ID].EmailVerified).To(BeTrue())

			Expect(service.VerifyEmail(issued)).To(MatchError(auth.ErrInvalidOrExpiredToken))
		})
	})

	Describe("Password reset", func() {
		It("reports success even for unknown emails", func() {
			err := service.RequestPasswordReset(ctx, auth.ForgotPasswordDTO{Email: "ghost@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(mails.sent).To(BeEmpty())
		})

		It("invalidates prior reset tokens when a new one is requested", func() {
			newEmployee("reset@example.com", "password123", true, true)

			Expect(service.RequestPasswordReset(ctx, auth.ForgotPasswordDTO{Email: "reset@example.com"})).To(Succeed())
			var first string
			for token := range tokens.reset {
				first = token
			}

			Expect(service.RequestPasswordReset(ctx, auth.ForgotPasswordDTO{Email: "reset@example.com"})).To(Succeed())
			Expect(tokens.reset).To(HaveLen(1))
			Expect(tokens.reset).NotTo(HaveKey(first))
		})

		It("requires the password pair to match", func() {
			newEmployee("reset@example.com", "password123", true, true)
			Expect(service.RequestPasswordReset(ctx, auth.ForgotPasswordDTO{Email: "reset@example.com"})).To(Succeed())

			var issued string
			for token := range tokens.reset {
				issued = token
			}

			err := service.ResetPassword(issued, auth.ResetPasswordDTO{Password: "newpassword", ConfirmPassword: "different"})
			Expect(err).To(HaveOccurred())
			Expect(tokens.reset).To(HaveKey(issued))
		})

		It("consumes the token exactly once", func() {
			newEmployee("reset@example.com", "oldpassword", true, true)
			Expect(service.RequestPasswordReset(ctx, auth.ForgotPasswordDTO{Email: "reset@example.com"})).To(Succeed())

			var issued string
			for token := range tokens.reset {
				issued = token
			}

			dto := auth.ResetPasswordDTO{Password: "newpassword", ConfirmPassword: "newpassword"}
			Expect(service.ResetPassword(issued, dto)).To(Succeed())

			_, _, err := service.SignIn(auth.SignInDTO{Email: "reset@example.com", Password: "newpassword"}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.ResetPassword(issued, dto)).To(MatchError(auth.ErrInvalidOrExpiredToken))
		})
	})

	Describe("Invitation activation", func() {
		invite := func(email, name string) string {
			Expect(service.SendActivationEmail(ctx, auth.SendActivationDTO{Email: email, FullName: name})).To(Succeed())
			for token, t := range tokens.activation {
				if t.Email == email {
					return token
				}
			}
			Fail("no activation token issued")
			return ""
		}

		It("rejects inviting an email that already has a verified account", func() {
			newEmployee("existing@example.com", "password123", true, true)

			err := service.SendActivationEmail(ctx, auth.SendActivationDTO{Email: "existing@example.com", FullName: "Existing Person"})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("replaces an outstanding invitation for the same email", func() {
			first := invite("invitee@example.com", "Invi Tee")
			second := invite("invitee@example.com", "Invi Tee")

			Expect(first).NotTo(Equal(second))
			Expect(tokens.activation).To(HaveLen(1))
		})

		It("reports a valid token with the invitee details", func() {
			token := invite("invitee@example.com", "Invi Tee")

			status := service.VerifyActivationToken(token)
			Expect(status.Valid).To(BeTrue())
			Expect(status.Email).To(Equal("invitee@example.com"))
			Expect(status.FullName).To(Equal("Invi Tee"))
		})

		It("reports an expired token invalid and purges it", func() {
			token := invite("invitee@example.com", "Invi Tee")
			tokens.activation[token].ExpiresAt = time.Now().Add(-time.Minute)

			status := service.VerifyActivationToken(token)
			Expect(status.Valid).To(BeFalse())
			Expect(tokens.activation).NotTo(HaveKey(token))
		})

		It("creates a verified active account and consumes the token", func() {
			token := invite("invitee@example.com", "Invi Tee")

			emp, err := service.ActivateAccount(token, auth.ActivateAccountDTO{Password: "password123", FullName: "Invi Tee"})
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.FirstName).To(Equal("Invi"))
			Expect(emp.LastName).To(Equal("Tee"))
			Expect(emp.EmailVerified).To(BeTrue())
			Expect(emp.IsActive).To(BeTrue())

			_, err = service.ActivateAccount(token, auth.ActivateAccountDTO{Password: "password123", FullName: "Invi Tee"})
			Expect(err).To(MatchError(auth.ErrInvalidOrExpiredToken))

			_, _, err = service.SignIn(auth.SignInDTO{Email: "invitee@example.com", Password: "password123"}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("upgrades a pre-existing unverified account", func() {
			existing := newEmployee("halfway@example.com", "oldpassword", false, true)
			token := invite("halfway@example.com", "Half Way")

			emp, err := service.ActivateAccount(token, auth.ActivateAccountDTO{Password: "password123", FullName: "Half Way"})
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.ID).To(Equal(existing.ID))
			Expect(emp.EmailVerified).To(BeTrue())
		})
	})

	Describe("RefreshTokens", func() {
		It("issues new tokens for an active account", func() {
			newEmployee("worker@example.com", "password123", true, true)

			issued, _, err := service.SignIn(auth.SignInDTO{Email: "worker@example.com", Password: "password123"}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(issued.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
		})

		It("rejects a refresh for a deactivated account", func() {
			emp := newEmployee("worker@example.com", "password123", true, true)

			issued, _, err := service.SignIn(auth.SignInDTO{Email: "worker@example.com", Password: "password123"}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			emp.IsActive = false
			Expect(directory.Update(emp)).To(Succeed())

			_, err = service.RefreshTokens(issued.RefreshToken)
			Expect(err).To(MatchError(internal.ErrAccountInactive))
		})
	})
})
