package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"standy/internal/models"
	"standy/internal/pkg/utils"
	"standy/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const resetTokenTTL = time.Hour

// Service implements the identity collaborator: registration, sign in/out,
// password reset, email verification. It is constructed once at startup and
// handed to whoever needs it.
type Service struct {
	users   *repository.UserRepository
	tokens  TokenStore
	mailer  Mailer
	secret  []byte
	expiry  time.Duration
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(
	users *repository.UserRepository,
	tokens TokenStore,
	mailer Mailer,
	secret string,
	expiry time.Duration,
	baseURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		secret:  []byte(secret),
		expiry:  expiry,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a new account and sends the verification email. The raw
// password is hashed with bcrypt and discarded.
func (s *Service) Register(req *models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	login := strings.TrimSpace(req.Login)
	if login == "" {
		login = strings.SplitN(email, "@", 2)[0]
	}

	now := s.now()
	user := &models.User{
		ID:           utils.GenerateUUID(),
		Email:        email,
		PasswordHash: string(hash),
		Login:        login,
		Name:         strings.TrimSpace(req.Name),
		Surname:      strings.TrimSpace(req.Surname),
		VerifyToken:  utils.RandomCode(32),
		RegisteredAt: now,
		LastLoginAt:  now,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	link := s.baseURL + "/api/auth/verify?email=" + email + "&token=" + user.VerifyToken
	if err := s.mailer.SendVerification(email, link); err != nil {
		s.logger.Warn("Failed to send verification email",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Login checks credentials and issues a signed JWT.
func (s *Service) Login(req *models.LoginRequest) (string, *models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.StandardClaims{
		Id:        utils.GenerateUUID(),
		Subject:   user.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.expiry).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	if err := s.users.TouchLastLogin(user.ID, now); err != nil {
		s.logger.Warn("Failed to stamp last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = now
	return token, user, nil
}

// ParseToken validates a JWT and returns its claims, rejecting revoked IDs.
func (s *Service) ParseToken(ctx context.Context, tokenString string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	revoked, err := s.tokens.Revoked(ctx, claims.Id)
	if err != nil {
		s.logger.Warn("Token revocation check failed", zap.Error(err))
	} else if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims *jwt.StandardClaims) error {
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	return s.tokens.Revoke(ctx, claims.Id, ttl)
}

// ChangePassword verifies the current password before setting a new hash.
func (s *Service) ChangePassword(userID, current, next string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(userID, map[string]interface{}{"password_hash": string(hash)})
}

// ForgotPassword issues a reset token and emails the link. It reports
// success even for unknown addresses so the endpoint cannot be used to probe
// which emails are registered.
func (s *Service) ForgotPassword(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token := utils.RandomCode(32)
	exp := s.now().Add(resetTokenTTL)
	if err := s.users.Update(user.ID, map[string]interface{}{
		"reset_token":     token,
		"reset_token_exp": exp,
	}); err != nil {
		return err
	}

	link := s.baseURL + "/reset-password?email=" + email + "&token=" + token
	if err := s.mailer.SendPasswordReset(email, link); err != nil {
		s.logger.Warn("Failed to send reset email", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a valid reset token and sets the new password.
func (s *Service) ResetPassword(req *models.ResetPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return ErrInvalidToken
	}
	if user.ResetToken == "" || user.ResetToken != req.Token {
		return ErrInvalidToken
	}
	if user.ResetTokenExp == nil || user.ResetTokenExp.Before(s.now()) {
		return ErrInvalidToken
	}
	if len(req.NewPassword) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(user.ID, map[string]interface{}{
		"password_hash":   string(hash),
		"reset_token":     "",
		"reset_token_exp": nil,
	})
}

// VerifyEmail consumes a verification token.
func (s *Service) VerifyEmail(email, token string) error {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrInvalidToken
	}
	if user.VerifyToken == "" || user.VerifyToken != token {
		return ErrInvalidToken
	}
	return s.users.Update(user.ID, map[string]interface{}{
		"verified":     true,
		"verify_token": "",
	})
}

// CheckPassword verifies a password for destructive confirmations (account
// deletion).
func (s *Service) CheckPassword(userID, password string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
