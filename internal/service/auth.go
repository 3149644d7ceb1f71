package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/email"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/telemetry"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	confirmationTTL = 24 * time.Hour
	resetTTL        = time.Hour
	minPasswordLen  = 6
	maxPasswordLen  = 72 // bcrypt input limit, in bytes
	minNameLen      = 2
)

// dummyHash is compared against on unknown emails so both login paths cost a bcrypt round.
var dummyHash = sync.OnceValue(func() string {
	h, _ := hash.HashPassword("storefront-dummy-password")
	return h
})

type AuthService struct {
	Repo      *repo.GormRepo
	Tokens    *tokens.Issuer
	Mailer    email.Sender
	Events    mykafka.Publisher
	ClientURL string
	Now       func() time.Time
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func validateAccount(name, addr, password string) error {
	var fields []FieldError
	if len([]rune(strings.TrimSpace(name))) < minNameLen {
		fields = append(fields, FieldError{Field: "name", Message: "Name must be at least 2 characters long"})
	}
	if a, err := mail.ParseAddress(addr); err != nil || a.Address != addr {
		fields = append(fields, FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if msg := passwordProblem(password); msg != "" {
		fields = append(fields, FieldError{Field: "password", Message: msg})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func passwordProblem(password string) string {
	switch {
	case len(password) < minPasswordLen:
		return "Password must be at least 6 characters long"
	case len(password) > maxPasswordLen:
		return "Password must be at most 72 bytes long"
	}
	return ""
}

func (s *AuthService) link(path, token string) string {
	return strings.TrimRight(s.ClientURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func (s *AuthService) Signup(ctx context.Context, name, emailAddr, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	name = strings.TrimSpace(name)
	emailAddr = NormalizeEmail(emailAddr)
	if err := validateAccount(name, emailAddr, password); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	raw, digest, err := hash.NewToken()
	if err != nil {
		return nil, err
	}
	exp := s.now().Add(confirmationTTL)

	user := &models.User{
		Name:                       name,
		Email:                      emailAddr,
		PasswordHash:               pwHash,
		Role:                       models.RoleUser,
		EmailConfirmationTokenHash: &digest,
		EmailConfirmationExpires:   &exp,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("signup_error", "status", 400, "reason", "user already exist")
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		l.Error("signup_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendConfirmation(ctx, user, raw); err != nil {
		l.Error("signup_email_error", "reason", "confirmation email not sent", "user_id", user.ID, "error", err)
		telemetry.CaptureError(ctx, err)
	}

	publish(ctx, s.Events, mykafka.TopicUsers, user.ID.String(), mykafka.Event{
		Type:   "user_signed_up",
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	l.Info("signup_success", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, u *models.User, raw string) error {
	msg, err := email.ConfirmationMessage(u.Email, u.Name, s.link("/confirm-email", raw))
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID.String(), u.Role)
	if err != nil {
		logging.FromContext(ctx).Error("issue_token_error", "status", 500, "error", err)
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	emailAddr = NormalizeEmail(emailAddr)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", emailAddr)

	user, err := s.Repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.CheckPassword(dummyHash(), password)
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsEmailConfirmed {
		l.Warn("login_failed", "status", 403, "reason", "email not confirmed")
		return nil, &UnconfirmedError{User: user}
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	l.Info("login_successful")
	return res, nil
}

// AdminLogin gives the same error for unknown, non-admin and wrong password.
func (s *AuthService) AdminLogin(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	emailAddr = NormalizeEmail(emailAddr)
	l := logging.FromContext(ctx).With("svc", "auth.admin_login", "email", emailAddr)

	user, err := s.Repo.GetAdminByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.CheckPassword(dummyHash(), password)
			l.Warn("admin_login_failed", "status", 401, "reason", "no such admin")
			return nil, ErrInvalidAdminCredentials
		}
		l.Error("admin_login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("admin_login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidAdminCredentials
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	l.Info("admin_login_successful")
	return res, nil
}

func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.confirm_email")

	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.Repo.GetUserByConfirmationToken(ctx, hash.Sha256Hex(token), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("confirm_email_failed", "status", 400, "reason", "invalid or expired token")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user by token: %w", err)
	}

	user.IsEmailConfirmed = true
	user.EmailConfirmationTokenHash = nil
	user.EmailConfirmationExpires = nil
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("confirm_email_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("save user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUsers, user.ID.String(), mykafka.Event{
		Type:   "email_confirmed",
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	l.Info("email_confirmed", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) ResendConfirmation(ctx context.Context, emailAddr string) error {
	emailAddr = NormalizeEmail(emailAddr)
	l := logging.FromContext(ctx).With("svc", "auth.resend_confirmation", "email", emailAddr)

	user, err := s.Repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("resend_confirmation_failed", "status", 404, "reason", "user not found")
			return notFound("user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.IsEmailConfirmed {
		l.Warn("resend_confirmation_failed", "status", 400, "reason", "already confirmed")
		return ErrAlreadyConfirmed
	}

	raw, digest, err := hash.NewToken()
	if err != nil {
		return err
	}
	exp := s.now().Add(confirmationTTL)
	user.EmailConfirmationTokenHash = &digest
	user.EmailConfirmationExpires = &exp
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if err := s.sendConfirmation(ctx, user, raw); err != nil {
		l.Error("resend_confirmation_failed", "status", 500, "error", err)
		telemetry.CaptureError(ctx, err)
		return err
	}
	l.Info("confirmation_resent")
	return nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// ForgotPassword does not reveal whether the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = NormalizeEmail(emailAddr)
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("forgot_password_unknown_email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw, digest, err := hash.NewToken()
	if err != nil {
		return err
	}
	exp := s.now().Add(resetTTL)
	user.PasswordResetTokenHash = &digest
	user.PasswordResetExpires = &exp
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	msg, err := email.PasswordResetMessage(user.Email, user.Name, s.link("/reset-password", raw))
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		l.Error("forgot_password_failed", "status", 500, "user_id", user.ID, "error", err)
		err = fmt.Errorf("%w: %w", ErrEmailDelivery, err)
		telemetry.CaptureError(ctx, err)
		return err
	}
	l.Info("password_reset_sent", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if msg := passwordProblem(password); msg != "" {
		return invalid("password", msg)
	}
	if token == "" {
		return ErrInvalidToken
	}

	user, err := s.Repo.GetUserByResetToken(ctx, hash.Sha256Hex(token), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("reset_password_failed", "status", 400, "reason", "invalid or expired token")
			return ErrInvalidToken
		}
		return fmt.Errorf("find user by token: %w", err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = pwHash
	user.PasswordResetTokenHash = nil
	user.PasswordResetExpires = nil
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	l.Info("password_reset", "user_id", user.ID)
	return nil
}

// CreateAccount creates an already confirmed account with the given role.
func (s *AuthService) CreateAccount(ctx context.Context, name, emailAddr, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	emailAddr = NormalizeEmail(emailAddr)
	if err := validateAccount(name, emailAddr, password); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:             name,
		Email:            emailAddr,
		PasswordHash:     pwHash,
		Role:             role,
		IsEmailConfirmed: true,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
