package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeTTL = 10 * time.Minute

type SignupInput struct {
	Name            string `json:"name" validate:"required,min=2,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=6,max=20"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// AuthResult is a user together with a freshly issued token.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService struct {
	users    *crud.Factory[domain.User, *domain.User]
	repo     domain.UserRepository
	tokens   *TokenManager
	mailer   domain.Mailer
	validate *validator.Validate
	now      Clock
	logger   *logger.Logger
}

func NewAuthService(
	users *crud.Factory[domain.User, *domain.User],
	repo domain.UserRepository,
	tokens *TokenManager,
	mailer domain.Mailer,
	now Clock,
	log *logger.Logger,
) *AuthService {
	if now == nil {
		now = SystemClock
	}
	return &AuthService{
		users:    users,
		repo:     repo,
		tokens:   tokens,
		mailer:   mailer,
		validate: crud.NewValidator(),
		now:      now,
		logger:   log.Named("auth"),
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, domain.Internal(err)
	}
	user := &domain.User{
		Name:     strings.TrimSpace(in.Name),
		Slug:     makeSlug(in.Name),
		Email:    normalizeEmail(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Password: hash,
		Role:     domain.RoleUser,
		Active:   true,
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User signed up", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	user, err := s.repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthorized("Incorrect email or password")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, domain.Unauthorized("Incorrect email or password")
	}
	if !user.Active {
		return nil, domain.Unauthorized("This account has been deactivated")
	}

	now := s.now()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{"lastLogin": now}); err != nil {
		s.logger.Warn("Failed to record last login", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
	user.LastLogin = &now
	return s.issue(user)
}

// ForgotPassword stores a hashed 6-digit reset code valid for ten minutes and
// mails the plain code to the user.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("There is no user with that email " + email)
	}
	if err != nil {
		return domain.Internal(err)
	}

	code, err := resetCode()
	if err != nil {
		return domain.Internal(err)
	}
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"passwordResetCode":     hashCode(code),
		"passwordResetExpires":  s.now().Add(resetCodeTTL),
		"passwordResetVerified": false,
	}); err != nil {
		return domain.Internal(err)
	}

	if s.mailer == nil {
		return domain.Internal(errors.New("mailer is not configured"))
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>We received a request to reset the password on your account.</p>"+
		"<p><strong>%s</strong></p><p>Enter this code to complete the reset. It is valid for 10 minutes.</p>",
		user.Name, code)
	if err := s.mailer.Send(ctx, []string{user.Email}, "Your password reset code (valid for 10 min)", body); err != nil {
		s.logger.Error("Failed to send reset code", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		if rollbackErr := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{
			"passwordResetCode":     "",
			"passwordResetExpires":  nil,
			"passwordResetVerified": false,
		}); rollbackErr != nil {
			s.logger.Error("Failed to clear reset code", zap.Error(rollbackErr))
		}
		return domain.Internal(err)
	}
	return nil
}

func (s *AuthService) VerifyResetCode(ctx context.Context, code string) error {
	user, err := s.repo.FindByResetCode(ctx, hashCode(strings.TrimSpace(code)), s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.BadRequest("Reset code invalid or expired")
	}
	if err != nil {
		return domain.Internal(err)
	}
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{"passwordResetVerified": true}); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	user, err := s.repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("There is no user with that email " + in.Email)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	if !user.PasswordResetVerified {
		return nil, domain.BadRequest("Reset code not verified")
	}

	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return nil, domain.Internal(err)
	}
	now := s.now()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"password":              hash,
		"passwordChangedAt":     now,
		"passwordResetCode":     "",
		"passwordResetExpires":  nil,
		"passwordResetVerified": false,
	}); err != nil {
		return nil, domain.Internal(err)
	}
	user.Password = hash
	user.PasswordChangedAt = &now
	return s.issue(user)
}

// Authenticate resolves a bearer token into the acting user. Tokens of
// deleted or deactivated users and tokens issued before the last password
// change are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.Actor{}, err
	}
	oid, err := parseID(claims.UserID, "user")
	if err != nil {
		return domain.Actor{}, domain.Unauthorized(msgInvalidToken)
	}
	user, err := s.users.Store().FindByID(ctx, oid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, domain.Unauthorized("The user that belong to this token does no longer exist")
	}
	if err != nil {
		return domain.Actor{}, domain.Internal(err)
	}
	if !user.Active {
		return domain.Actor{}, domain.Unauthorized("This account has been deactivated")
	}
	if user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return domain.Actor{}, domain.Unauthorized("User recently changed his password. please login again..")
	}
	return domain.Actor{ID: user.ID, Role: user.Role, Email: user.Email}, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func resetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
