package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type ChangePasswordInput struct {
	Password        string `json:"password" validate:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type ChangeMyPasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UserService covers admin user management and the logged-in user's profile.
type UserService struct {
	users    *crud.Factory[domain.User, *domain.User]
	repo     domain.UserRepository
	tokens   *TokenManager
	validate *validator.Validate
	now      Clock
	logger   *logger.Logger
}

func NewUserService(
	users *crud.Factory[domain.User, *domain.User],
	repo domain.UserRepository,
	tokens *TokenManager,
	now Clock,
	log *logger.Logger,
) *UserService {
	if now == nil {
		now = SystemClock
	}
	return &UserService{
		users:    users,
		repo:     repo,
		tokens:   tokens,
		validate: crud.NewValidator(),
		now:      now,
		logger:   log.Named("users"),
	}
}

func (s *UserService) List(ctx context.Context, params url.Values) (*crud.ListResult[domain.User], error) {
	return s.users.List(ctx, nil, params)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// Create adds a user on behalf of staff. The payload must carry a password.
// Only admins may create staff accounts.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, payload map[string]interface{}) (*domain.User, error) {
	if role, ok := payload["role"]; ok && role != string(domain.RoleUser) && !actor.IsAdmin() {
		return nil, domain.Forbidden(msgForbidden)
	}
	password, _ := payload["password"].(string)
	if len(password) < 6 {
		return nil, domain.Validation("password must be at least 6 characters", map[string]string{"password": "min=6"})
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, domain.Internal(err)
	}
	_, hasActive := payload["active"]

	return s.users.Create(ctx, payload, func(_ context.Context, u *domain.User) error {
		u.Email = normalizeEmail(u.Email)
		u.Slug = makeSlug(u.Name)
		u.Password = hash
		if u.Role == "" {
			u.Role = domain.RoleUser
		}
		if !hasActive {
			u.Active = true
		}
		return nil
	})
}

// Update edits a user. Managers may edit profiles of regular users only and
// never change role or active.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, payload map[string]interface{}) (*domain.User, error) {
	if !actor.IsAdmin() {
		if _, ok := payload["role"]; ok {
			return nil, domain.Forbidden(msgForbidden)
		}
		if _, ok := payload["active"]; ok {
			return nil, domain.Forbidden(msgForbidden)
		}
	}
	user, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.users.UpdateLoaded(ctx, user, payload, userProfileStep)
}

func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// manageable loads the user with id and checks that actor may change it.
func (s *UserService) manageable(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	user, err := s.users.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && user.Role != domain.RoleUser {
		return nil, domain.Forbidden(msgForbidden)
	}
	return user, nil
}

// ChangeUserPassword sets a new password without asking for the current one.
func (s *UserService) ChangeUserPassword(ctx context.Context, id string, in ChangePasswordInput) (*domain.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	user, err := s.users.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.setPassword(user, in.Password); err != nil {
		return nil, err
	}
	return s.users.Save(ctx, user)
}

func (s *UserService) GetMe(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.users.Get(ctx, actor.ID.Hex())
}

// UpdateMe changes the caller's own profile. Role, activity and password
// cannot be changed here.
func (s *UserService) UpdateMe(ctx context.Context, actor domain.Actor, payload map[string]interface{}) (*domain.User, error) {
	return s.users.Update(ctx, actor.ID.Hex(), only(payload, domain.UserSelfUpdatable...), userProfileStep)
}

// ChangeMyPassword verifies the current password, stores the new one and
// returns a fresh token. Tokens issued before the change stop working.
func (s *UserService) ChangeMyPassword(ctx context.Context, actor domain.Actor, in ChangeMyPasswordInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	user, err := s.users.Load(ctx, actor.ID.Hex())
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return nil, domain.BadRequest("Incorrect current password")
	}
	if err := s.setPassword(user, in.Password); err != nil {
		return nil, err
	}
	if _, err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.Internal(err)
	}
	s.logger.Info("User changed password", zap.String("user_id", user.ID.Hex()))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) DeactivateMe(ctx context.Context, actor domain.Actor) error {
	if err := s.repo.UpdateFields(ctx, actor.ID, map[string]interface{}{"active": false}); err != nil {
		return domain.Internal(err)
	}
	s.users.Invalidate(ctx)
	return nil
}

func (s *UserService) setPassword(user *domain.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return domain.Internal(err)
	}
	now := s.now()
	user.Password = hash
	user.PasswordChangedAt = &now
	return nil
}

func userProfileStep(_ context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	u.Slug = makeSlug(u.Name)
	return nil
}
