// Package auth implements registration, email verification, login, token
// refresh and password reset on top of the user and auth code stores.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teklip/marketplace/internal/apperr"
	"teklip/marketplace/internal/mail"
	"teklip/marketplace/internal/metrics"
	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/ratelimit"
	"teklip/marketplace/internal/store"

	"go.uber.org/zap"
)

type Deps struct {
	Users   store.UserStore
	Codes   store.AuthCodeStore
	Hasher  PasswordHasher
	Tokens  *TokenIssuer
	Mailer  mail.Notifier
	Limiter ratelimit.Limiter // optional
	Metrics *metrics.Metrics  // optional
	Log     *zap.Logger

	CodeExpiry time.Duration
}

type Service struct {
	users      store.UserStore
	codes      store.AuthCodeStore
	hasher     PasswordHasher
	tokens     *TokenIssuer
	mailer     mail.Notifier
	limiter    ratelimit.Limiter
	metrics    *metrics.Metrics
	log        *zap.Logger
	codeExpiry time.Duration
	newCode    CodeGenerator
	now        func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	expiry := d.CodeExpiry
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}
	return &Service{
		users:      d.Users,
		codes:      d.Codes,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		mailer:     d.Mailer,
		limiter:    d.Limiter,
		metrics:    d.Metrics,
		log:        log.Named("auth"),
		codeExpiry: expiry,
		newCode:    RandomCode,
		now:        time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithCodeGenerator(gen CodeGenerator) *Service {
	s.newCode = gen
	return s
}

type Result struct {
	Success bool `json:"success"`
}

var success = Result{Success: true}

// LoginResult is the user record with the issued token pair attached.
type LoginResult struct {
	model.User
	model.TokenPair
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func errUserNotFound() error {
	return apperr.NotFound(apperr.CodeUserNotFound, "User with this email does not exist")
}

func errInvalidCode() error {
	return apperr.NotFound(apperr.CodeInvalidVerificationCode, "Invalid verification code")
}

func errAlreadyVerified() error {
	return apperr.Unprocessable(apperr.CodeEmailAlreadyVerified, "Email has been already verified")
}

func errPasswordMismatch() error {
	return apperr.BadRequest(apperr.CodePasswordConfirmation, "User password and passwordConfirmation does not match")
}

func (s *Service) userByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errUserNotFound()
	}
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("get user by email: %w", err))
	}
	return u, nil
}

func (s *Service) hashPassword(pw string) (string, error) {
	hash, err := s.hasher.Hash(pw)
	if err != nil || !s.hasher.Compare(hash, pw) {
		return "", apperr.BadRequest(apperr.CodePasswordError, "Password hashing error")
	}
	return hash, nil
}

// Register creates an inactive user and emails the first verification code.
func (s *Service) Register(ctx context.Context, reg model.Registration) (res Result, err error) {
	defer func() { s.count(s.metricsRegistrations(), err) }()

	email := NormalizeEmail(reg.Email)
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return Result{}, apperr.Internal("", fmt.Errorf("email exists: %w", err))
	}
	if exists {
		return Result{}, apperr.Conflict(apperr.CodeDuplicateEmail, "User already exists")
	}
	if reg.Password != reg.PasswordConfirmation {
		return Result{}, errPasswordMismatch()
	}
	hash, err := s.hashPassword(reg.Password)
	if err != nil {
		return Result{}, err
	}

	u, err := s.users.CreateUser(ctx, model.User{
		Name:         strings.TrimSpace(reg.Name),
		Surname:      strings.TrimSpace(reg.Surname),
		Email:        email,
		PasswordHash: hash,
		IsActive:     false,
	})
	if errors.Is(err, store.ErrConflict) {
		return Result{}, apperr.Conflict(apperr.CodeDuplicateEmail, "User already exists")
	}
	if err != nil {
		return Result{}, apperr.Internal("", fmt.Errorf("create user: %w", err))
	}

	if err := s.issueCode(ctx, &u, model.AuthCodeEmailVerification); err != nil {
		return Result{}, err
	}
	return success, nil
}

func (s *Service) VerifyEmail(ctx context.Context, email, code string) (Result, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if u.IsEmailAddressVerified {
		return Result{}, errAlreadyVerified()
	}
	if _, err := s.consumeCode(ctx, u.ID, model.AuthCodeEmailVerification, code); err != nil {
		return Result{}, err
	}

	active := true
	if _, err := s.users.UpdateUser(ctx, u.ID, model.UserUpdate{IsActive: &active, IsEmailAddressVerified: &active}); err != nil {
		return Result{}, apperr.Internal("", fmt.Errorf("activate user: %w", err))
	}
	return success, nil
}

// ResendEmailVerificationCode adds a new code; earlier unexpired codes stay valid.
func (s *Service) ResendEmailVerificationCode(ctx context.Context, email string) (Result, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if u.IsEmailAddressVerified {
		return Result{}, errAlreadyVerified()
	}
	if err := s.allow(ctx, u.Email, model.AuthCodeEmailVerification); err != nil {
		return Result{}, err
	}
	if err := s.issueCode(ctx, u, model.AuthCodeEmailVerification); err != nil {
		return Result{}, err
	}
	return success, nil
}

// Authenticate checks credentials of an active user and stamps lastLogin.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		code := apperr.CodeDisabledUser
		switch {
		case !u.IsEmailAddressVerified:
			code = apperr.CodeEmailNotVerified
		case !u.IsPhoneNumberVerified:
			code = apperr.CodePhoneNotVerified
		}
		return nil, apperr.NotFound(code, "User is not active")
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return nil, apperr.Unauthorized(apperr.CodeAuthError, "Wrong credentials provided")
	}

	now := s.now().UTC()
	updated, err := s.users.UpdateUser(ctx, u.ID, model.UserUpdate{LastLogin: &now})
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("update last login: %w", err))
	}
	return updated, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (res LoginResult, err error) {
	defer func() { s.count(s.metricsLogins(), err) }()

	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	pair, err := s.IssueTokens(ctx, u.ID, u.Email)
	if err != nil {
		return LoginResult{}, err
	}
	s.tokenIssued("login")
	return LoginResult{User: *u, TokenPair: pair}, nil
}

func (s *Service) IssueTokens(ctx context.Context, userID, email string) (model.TokenPair, error) {
	pair, err := s.tokens.Issue(ctx, userID, email)
	if err != nil {
		return model.TokenPair{}, apperr.Internal("", fmt.Errorf("issue tokens: %w", err))
	}
	return pair, nil
}

// Refresh re-issues a token pair for the user named by a verified refresh token.
func (s *Service) Refresh(ctx context.Context, userID string) (model.TokenPair, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.TokenPair{}, apperr.NotFound(apperr.CodeUserNotFound, "User with this id does not exist")
	}
	if err != nil {
		return model.TokenPair{}, apperr.Internal("", fmt.Errorf("get user by id: %w", err))
	}
	pair, err := s.IssueTokens(ctx, u.ID, u.Email)
	if err != nil {
		return model.TokenPair{}, err
	}
	s.tokenIssued("refresh")
	return pair, nil
}

// RequestPasswordReset replaces any live reset code with a new one.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (Result, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if err := s.allow(ctx, u.Email, model.AuthCodePasswordReset); err != nil {
		return Result{}, err
	}
	if _, err := s.codes.DeleteAuthCodes(ctx, u.ID, model.AuthCodePasswordReset); err != nil {
		return Result{}, apperr.Internal("", fmt.Errorf("delete reset codes: %w", err))
	}
	if err := s.issueCode(ctx, u, model.AuthCodePasswordReset); err != nil {
		return Result{}, err
	}
	return success, nil
}

// CheckPasswordResetCode validates a reset code without consuming it.
func (s *Service) CheckPasswordResetCode(ctx context.Context, email, code string) (Result, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	_, err = s.codes.FindAuthCode(ctx, u.ID, model.AuthCodePasswordReset, code, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, errInvalidCode()
	}
	if err != nil {
		return Result{}, apperr.Internal("", fmt.Errorf("find reset code: %w", err))
	}
	return success, nil
}

// ResetPassword validates the code before the passwords and consumes it only
// once the new hash is ready.
func (s *Service) ResetPassword(ctx context.Context, email, code, password, confirmation string) (Result, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	_, err = s.codes.FindAuthCode(ctx, u.ID, model.AuthCodePasswordReset, code, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, errInvalidCode()
	}
	if err != nil {
		return Result{}, apperr.Internal("", fmt.Errorf("find reset code: %w", err))
	}
	if password != confirmation {
		return Result{}, errPasswordMismatch()
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return Result{}, err
	}
	consumed, err := s.consumeCode(ctx, u.ID, model.AuthCodePasswordReset, code)
	if err != nil {
		return Result{}, err
	}
	if _, err := s.users.UpdateUser(ctx, u.ID, model.UserUpdate{PasswordHash: &hash}); err != nil {
		// the code is already gone; the user has to request a new one
		s.log.Error("reset password: update after consuming code",
			zap.String("user_id", u.ID),
			zap.String("code_id", consumed.ID),
			zap.Error(err),
		)
		return Result{}, apperr.Internal("", fmt.Errorf("update password: %w", err))
	}
	return success, nil
}

func (s *Service) consumeCode(ctx context.Context, userID string, typ model.AuthCodeType, code string) (*model.AuthCode, error) {
	c, err := s.codes.ConsumeAuthCode(ctx, userID, typ, code, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, errInvalidCode()
	}
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("consume %s code: %w", typ, err))
	}
	return c, nil
}

// issueCode stores a fresh code and then mails it. A mail failure leaves
// the stored code in place.
func (s *Service) issueCode(ctx context.Context, u *model.User, typ model.AuthCodeType) error {
	code, err := s.newCode()
	if err != nil {
		return apperr.Internal("", fmt.Errorf("generate code: %w", err))
	}
	now := s.now()
	if _, err := s.codes.CreateAuthCode(ctx, model.AuthCode{
		UserID:    u.ID,
		Code:      code,
		Type:      typ,
		ExpiresAt: now.Add(s.codeExpiry),
	}); err != nil {
		return apperr.Internal("", fmt.Errorf("create %s code: %w", typ, err))
	}
	if s.metrics != nil {
		s.metrics.AuthCodesIssued.WithLabelValues(string(typ)).Inc()
	}

	tmpl := mail.TemplateVerification
	if typ == model.AuthCodePasswordReset {
		tmpl = mail.TemplatePasswordReset
	}
	if err := s.mailer.Send(ctx, u.Email, tmpl, mail.CodeData{Code: code, ExpiresIn: s.codeExpiry}); err != nil {
		s.log.Error("send code email",
			zap.String("user_id", u.ID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
		return apperr.Internal(apperr.CodeMailError, fmt.Errorf("send %s mail: %w", typ, err))
	}
	return nil
}

func (s *Service) allow(ctx context.Context, email string, typ model.AuthCodeType) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Allow(ctx, ratelimit.Key(email, string(typ)))
	if err == nil {
		return nil
	}
	var le *ratelimit.LimitError
	if errors.As(err, &le) {
		return apperr.TooManyRequests(le.Error())
	}
	// limiter backend errors fail open
	s.log.Warn("rate limiter unavailable", zap.Error(err))
	return nil
}
