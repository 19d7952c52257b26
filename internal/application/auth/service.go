package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanishmail/internal/domain"
	"github.com/vanishmail/internal/otp"
	"github.com/vanishmail/internal/pkg/id"
	"github.com/vanishmail/internal/pkg/mailaddr"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// FederatedProfile is the externally-verified identity handed to
// FederatedLogin. The transport layer fills it from a validated Google ID
// token; no server-side session is involved.
type FederatedProfile struct {
	Sub         string
	Email       string
	DisplayName string
}

// Result carries the resolved user and their bearer token. Warning is set
// when OTP email dispatch failed but the flow continued.
type Result struct {
	User    *domain.User
	Token   string
	Warning string
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*Result, error)
	RequestSignupOTP(ctx context.Context, req SignupRequest) (warning string, err error)
	VerifySignupOTP(ctx context.Context, req VerifyOTPRequest) (*Result, error)
	Login(ctx context.Context, req LoginRequest) (*Result, error)
	FederatedLogin(ctx context.Context, profile FederatedProfile) (*Result, error)
	RequestPasswordReset(ctx context.Context, email string) (warning string, err error)
	VerifyResetOTP(ctx context.Context, req VerifyOTPRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendSignupOTP(to, code string) error
	SendPasswordResetOTP(to, code string) error
}

type tokenSigner interface {
	Sign(userID, email string) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type service struct {
	users      userStore
	signupOTPs *otp.Ledger
	resetOTPs  *otp.Ledger
	mailer     mailer
	signer     tokenSigner
	events     eventPublisher // optional
	otpTTL     time.Duration
}

type ServiceDeps struct {
	UserRepo   userStore
	SignupOTPs *otp.Ledger
	ResetOTPs  *otp.Ledger
	Mailer     mailer
	Signer     tokenSigner
	Events     eventPublisher
	OTPTTL     time.Duration
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.OTPTTL
	if ttl == 0 {
		ttl = otp.DefaultTTL
	}
	return &service{
		users:      deps.UserRepo,
		signupOTPs: deps.SignupOTPs,
		resetOTPs:  deps.ResetOTPs,
		mailer:     deps.Mailer,
		signer:     deps.Signer,
		events:     deps.Events,
		otpTTL:     ttl,
	}
}

// Signup creates an account immediately, with no OTP step.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*Result, error) {
	email := mailaddr.Canonical(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.createAndIssue(ctx, email, string(hash), req.Name, "")
}

// RequestSignupOTP hashes the password up front and parks the whole pending
// account in the signup ledger; nothing is persisted until the code is
// verified. A failed email dispatch degrades to success-with-warning so a
// down mail relay never blocks signups; the code goes to the logs instead.
func (s *service) RequestSignupOTP(ctx context.Context, req SignupRequest) (string, error) {
	email := mailaddr.Canonical(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	code, err := otp.Generate()
	if err != nil {
		return "", err
	}
	s.signupOTPs.Store(email, code, &otp.PendingUser{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  req.Name,
	}, s.otpTTL)

	if err := s.mailer.SendSignupOTP(email, code); err != nil {
		slog.Warn("signup OTP email dispatch failed", "email", email, "code", code, "err", err)
		return "verification email could not be sent; contact support if it does not arrive", nil
	}
	return "", nil
}

// VerifySignupOTP completes the deferred signup. The password inside the
// pending payload is already hashed, so it goes straight into the record.
func (s *service) VerifySignupOTP(ctx context.Context, req VerifyOTPRequest) (*Result, error) {
	email := mailaddr.Canonical(req.Email)
	pending, err := s.signupOTPs.Verify(email, req.OTP)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		// Record stored without a payload cannot create an account.
		s.signupOTPs.Clear(email)
		return nil, fmt.Errorf("no pending signup for this email: %w", domain.ErrNotFound)
	}
	res, err := s.createAndIssue(ctx, pending.Email, pending.PasswordHash, pending.DisplayName, "")
	if err != nil {
		// A concurrent verification that won the race surfaces here as Conflict.
		return nil, err
	}
	s.signupOTPs.Clear(email)
	return res, nil
}

// Login authenticates with email and password. Unknown email, passwordless
// account, and wrong password all return the same error.
func (s *service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	email := mailaddr.Canonical(req.Email)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !u.HasPassword() {
		return nil, fmt.Errorf("email or password is incorrect: %w", domain.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("email or password is incorrect: %w", domain.ErrInvalidCredentials)
	}
	token, err := s.signer.Sign(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Token: token}, nil
}

// FederatedLogin resolves a verified external profile to a local account.
// Lookup order is sub, then email (link), then create — this keeps users who
// had a password account before adopting Google login on a single record.
func (s *service) FederatedLogin(ctx context.Context, profile FederatedProfile) (*Result, error) {
	email := mailaddr.Canonical(profile.Email)

	u, err := s.users.GetByGoogleSub(ctx, profile.Sub)
	if err != nil {
		u, err = s.users.GetByEmail(ctx, email)
		if err == nil {
			if uerr := s.users.Update(ctx, u.UserID, map[string]interface{}{"google_sub": profile.Sub}); uerr != nil {
				return nil, uerr
			}
			u.GoogleSub = profile.Sub
		} else {
			return s.createAndIssue(ctx, email, "", profile.DisplayName, profile.Sub)
		}
	}

	token, err := s.signer.Sign(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Token: token}, nil
}

// RequestPasswordReset responds identically whether or not the email is
// registered; unknown emails leave no trace in the ledger.
func (s *service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = mailaddr.Canonical(email)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil
	}
	code, err := otp.Generate()
	if err != nil {
		return "", err
	}
	s.resetOTPs.Store(email, code, nil, s.otpTTL)

	if err := s.mailer.SendPasswordResetOTP(u.Email, code); err != nil {
		slog.Warn("reset OTP email dispatch failed", "email", email, "code", code, "err", err)
		return "reset email could not be sent; contact support if it does not arrive", nil
	}
	return "", nil
}

// VerifyResetOTP marks the reset record verified; the record stays until the
// new password arrives via ResetPassword.
func (s *service) VerifyResetOTP(ctx context.Context, req VerifyOTPRequest) error {
	_, err := s.resetOTPs.Verify(mailaddr.Canonical(req.Email), req.OTP)
	return err
}

// ResetPassword applies the new password. Allowed only after VerifyResetOTP
// succeeded for this email; consumes the reset record.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := mailaddr.Canonical(req.Email)
	if !s.resetOTPs.IsVerified(email) {
		return fmt.Errorf("verify the reset code first: %w", domain.ErrForbidden)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return err
	}
	s.resetOTPs.Clear(email)
	s.publish(ctx, "user.password_reset", email)
	return nil
}

func (s *service) createAndIssue(ctx context.Context, email, passwordHash, name, googleSub string) (*Result, error) {
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  name,
		GoogleSub:    googleSub,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	token, err := s.signer.Sign(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "user.signup", email)
	return &Result{User: u, Token: token}, nil
}

// publish is best-effort: event fan-out never fails a user flow.
func (s *service) publish(ctx context.Context, subject, message string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, message); err != nil {
		slog.Warn("event publish failed", "subject", subject, "err", err)
	}
}
