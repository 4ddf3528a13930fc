package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notice is an in-app notification, optionally mirrored by e-mail.
type Notice struct {
	UserID  primitive.ObjectID
	Title   string
	Message string
	Type    string
	Link    string
	Email   bool
}

type NotificationService struct {
	notifications *crud.Factory[domain.Notification, *domain.Notification]
	repo          domain.NotificationRepository
	users         domain.UserRepository
	userStore     crud.Store[domain.User]
	mailer        domain.Mailer
	logger        *logger.Logger
}

func NewNotificationService(
	notifications *crud.Factory[domain.Notification, *domain.Notification],
	repo domain.NotificationRepository,
	users domain.UserRepository,
	userStore crud.Store[domain.User],
	mailer domain.Mailer,
	log *logger.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		repo:          repo,
		users:         users,
		userStore:     userStore,
		mailer:        mailer,
		logger:        log.Named("notifications"),
	}
}

func (s *NotificationService) ListMine(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Notification], error) {
	return s.notifications.List(ctx, bson.M{"userId": actor.ID}, params)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	oid, err := parseID(id, "notification")
	if err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, oid, actor.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("No notification for this id " + id)
		}
		return domain.Internal(err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, domain.Internal(err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	n, err := s.notifications.Load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(n.UserID) {
		return domain.NotFound("No notification for this id " + id)
	}
	return s.notifications.Delete(ctx, id)
}

// Send creates a notification for an existing user on behalf of an admin.
func (s *NotificationService) Send(ctx context.Context, payload map[string]interface{}) (*domain.Notification, error) {
	rawID, _ := payload["userId"].(string)
	userID, err := parseID(rawID, "user")
	if err != nil {
		return nil, err
	}
	if _, err := s.userStore.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No user for this id " + rawID)
		}
		return nil, domain.Internal(err)
	}
	return s.notifications.Create(ctx, payload, func(_ context.Context, n *domain.Notification) error {
		if n.Type == "" {
			n.Type = domain.NotifyGeneral
		}
		return nil
	})
}

// Notify stores notice for its user. Failures are logged and dropped so that
// the operation that triggered the notice is not affected.
func (s *NotificationService) Notify(ctx context.Context, notice Notice) {
	if s == nil {
		return
	}
	n := &domain.Notification{
		UserID:  notice.UserID,
		Title:   notice.Title,
		Message: notice.Message,
		Type:    notice.Type,
		Link:    notice.Link,
	}
	if _, err := s.notifications.Insert(ctx, n); err != nil {
		s.logger.Warn("Failed to store notification",
			zap.String("user_id", notice.UserID.Hex()), zap.String("type", notice.Type), zap.Error(err))
	}
	if notice.Email {
		s.email(ctx, notice)
	}
}

// NotifyAdmins sends notice to every active admin.
func (s *NotificationService) NotifyAdmins(ctx context.Context, notice Notice) {
	if s == nil {
		return
	}
	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		s.logger.Warn("Failed to list admins", zap.Error(err))
		return
	}
	for _, admin := range admins {
		notice.UserID = admin.ID
		s.Notify(ctx, notice)
	}
}

func (s *NotificationService) email(ctx context.Context, notice Notice) {
	if s.mailer == nil {
		return
	}
	user, err := s.userStore.FindByID(ctx, notice.UserID)
	if err != nil {
		s.logger.Warn("Failed to load notification recipient", zap.String("user_id", notice.UserID.Hex()), zap.Error(err))
		return
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", html.EscapeString(user.Name), html.EscapeString(notice.Message))
	if err := s.mailer.Send(ctx, []string{user.Email}, notice.Title, body); err != nil {
		s.logger.Warn("Failed to e-mail notification", zap.String("user_id", notice.UserID.Hex()), zap.Error(err))
	}
}
