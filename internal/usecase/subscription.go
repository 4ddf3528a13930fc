package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateSubscriptionInput struct {
	UserID   string `json:"userId" validate:"required"`
	PlanID   string `json:"planId" validate:"required"`
	OptionID string `json:"optionId" validate:"required"`
}

// SubscriptionService activates plans for users, either by an admin or from
// payment provider events, and expires them.
type SubscriptionService struct {
	subscriptions *crud.Factory[domain.Subscription, *domain.Subscription]
	repo          domain.SubscriptionRepository
	plans         crud.Store[domain.Plan]
	users         domain.UserRepository
	userStore     crud.Store[domain.User]
	notifier      *NotificationService
	effects       Effects
	validate      *validator.Validate
	now           Clock
	logger        *logger.Logger
}

// SubscriptionDeps groups the collaborators of SubscriptionService.
type SubscriptionDeps struct {
	Subscriptions *crud.Factory[domain.Subscription, *domain.Subscription]
	Repo          domain.SubscriptionRepository
	Plans         crud.Store[domain.Plan]
	Users         domain.UserRepository
	UserStore     crud.Store[domain.User]
	Notifier      *NotificationService
	Effects       Effects
	Now           Clock
}

func NewSubscriptionService(deps SubscriptionDeps, log *logger.Logger) *SubscriptionService {
	if deps.Now == nil {
		deps.Now = SystemClock
	}
	return &SubscriptionService{
		subscriptions: deps.Subscriptions,
		repo:          deps.Repo,
		plans:         deps.Plans,
		users:         deps.Users,
		userStore:     deps.UserStore,
		notifier:      deps.Notifier,
		effects:       deps.Effects,
		validate:      crud.NewValidator(),
		now:           deps.Now,
		logger:        log.Named("subscriptions"),
	}
}

func (s *SubscriptionService) List(ctx context.Context, params url.Values) (*crud.ListResult[domain.Subscription], error) {
	return s.subscriptions.List(ctx, nil, params)
}

func (s *SubscriptionService) ListMine(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Subscription], error) {
	return s.subscriptions.List(ctx, bson.M{"userId": actor.ID}, params)
}

func (s *SubscriptionService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Subscription, error) {
	sub, err := s.subscriptions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && !actor.Owns(sub.UserID) {
		return nil, domain.NotFound("No subscription for this id " + id)
	}
	return sub, nil
}

// Me returns the caller's live subscription.
func (s *SubscriptionService) Me(ctx context.Context, actor domain.Actor) (*domain.Subscription, error) {
	sub, err := s.repo.FindCurrentByUser(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("You have no active subscription")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return sub, nil
}

// Create activates a plan option for a user on behalf of an admin.
func (s *SubscriptionService) Create(ctx context.Context, in CreateSubscriptionInput) (*domain.Subscription, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	return s.activate(ctx, in.UserID, in.PlanID, in.OptionID, "")
}

func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	sub, err := s.subscriptions.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.subscriptions.Delete(ctx, id); err != nil {
		return err
	}
	s.detach(ctx, sub)
	return nil
}

// Cancel ends a subscription before its expiry.
func (s *SubscriptionService) Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Subscription, error) {
	sub, err := s.subscriptions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(sub.UserID) {
		return nil, domain.Forbidden(msgForbidden)
	}
	return s.cancel(ctx, sub)
}

// HandlePaymentEvent applies a verified payment provider event. Redelivered
// events are idempotent.
func (s *SubscriptionService) HandlePaymentEvent(ctx context.Context, ev *domain.PaymentEvent) (*domain.Subscription, error) {
	log := s.logger.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type),
		zap.String("payment_subscription_id", ev.Data.PaymentSubscriptionID))

	existing, err := s.repo.FindByPaymentID(ctx, ev.Data.PaymentSubscriptionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Internal(err)
	}

	switch ev.Type {
	case domain.PaymentSubscriptionCreated:
		if existing != nil {
			log.Info("Payment subscription already active")
			return existing, nil
		}
		sub, err := s.activate(ctx, ev.Data.UserID, ev.Data.PlanID, ev.Data.OptionID, ev.Data.PaymentSubscriptionID)
		if domain.KindOf(err) == domain.KindConflict {
			// A concurrent delivery inserted it first.
			if again, findErr := s.repo.FindByPaymentID(ctx, ev.Data.PaymentSubscriptionID); findErr == nil {
				return again, nil
			}
		}
		if err != nil {
			return nil, err
		}
		log.Info("Payment subscription activated", zap.String("subscription_id", sub.ID.Hex()))
		return sub, nil

	case domain.PaymentSubscriptionCanceled:
		if existing == nil {
			return nil, domain.NotFound("No subscription for payment id " + ev.Data.PaymentSubscriptionID)
		}
		if existing.Status == domain.SubscriptionCanceled {
			return existing, nil
		}
		log.Info("Payment subscription canceled")
		return s.cancel(ctx, existing)
	}
	return nil, domain.BadRequest("Unsupported event type " + ev.Type)
}

// ExpireDue expires every live subscription past its end date.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	due, err := s.repo.Due(ctx, s.now())
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range due {
		sub := &due[i]
		if err := s.repo.SetStatus(ctx, sub.ID, domain.SubscriptionExpired); err != nil {
			s.logger.Error("Failed to expire subscription", zap.String("subscription_id", sub.ID.Hex()), zap.Error(err))
			continue
		}
		expired++
		s.detach(ctx, sub)
		s.effects.Publish(ctx, domain.SubjectSubscriptionExpired, sub)
		s.notifier.Notify(ctx, Notice{
			UserID:  sub.UserID,
			Title:   "Your subscription has expired",
			Message: "Renew your plan to keep posting companies.",
			Type:    domain.NotifySubscriptionExpired,
			Link:    "/plans",
			Email:   true,
		})
	}
	if expired > 0 {
		s.subscriptions.Invalidate(ctx)
	}
	return expired, nil
}

// NotifyExpiring warns users whose subscription ends within window. Each
// subscription is notified once.
func (s *SubscriptionService) NotifyExpiring(ctx context.Context, window time.Duration) (int, error) {
	due, err := s.repo.DueForNotice(ctx, s.now().Add(window))
	if err != nil {
		return 0, err
	}
	notified := 0
	for i := range due {
		sub := &due[i]
		s.notifier.Notify(ctx, Notice{
			UserID:  sub.UserID,
			Title:   "Your subscription is about to expire",
			Message: fmt.Sprintf("Your subscription expires on %s.", sub.ExpiresAt.Format("2006-01-02")),
			Type:    domain.NotifySubscriptionExpiry,
			Link:    "/plans",
			Email:   true,
		})
		if err := s.repo.MarkNotified(ctx, sub.ID); err != nil {
			s.logger.Error("Failed to mark subscription notified", zap.String("subscription_id", sub.ID.Hex()), zap.Error(err))
			continue
		}
		notified++
	}
	return notified, nil
}

func (s *SubscriptionService) activate(ctx context.Context, userID, planID, optionID, paymentID string) (*domain.Subscription, error) {
	uid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	pid, err := parseID(planID, "plan")
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(optionID)
	if err != nil {
		return nil, domain.BadRequest("Plan option not found")
	}

	if _, err := s.userStore.FindByID(ctx, uid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No user for this id " + userID)
		}
		return nil, domain.Internal(err)
	}
	plan, err := s.plans.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No plan for this id " + planID)
		}
		return nil, domain.Internal(err)
	}
	if !plan.IsActive {
		return nil, domain.BadRequest("Plan is not active")
	}
	option, ok := plan.Option(oid)
	if !ok {
		return nil, domain.BadRequest("Plan option not found")
	}

	// A new subscription supersedes the live one.
	if current, err := s.repo.FindCurrentByUser(ctx, uid); err == nil {
		if err := s.repo.SetStatus(ctx, current.ID, domain.SubscriptionExpired); err != nil {
			s.logger.Warn("Failed to expire superseded subscription", zap.String("subscription_id", current.ID.Hex()), zap.Error(err))
		}
	}

	now := s.now()
	sub := &domain.Subscription{
		UserID:                uid,
		PlanID:                pid,
		OptionID:              oid,
		PaymentSubscriptionID: paymentID,
		Status:                domain.SubscriptionActive,
		StartedAt:             now,
		ExpiresAt:             now.AddDate(0, 0, option.Duration),
	}
	if _, err := s.subscriptions.Insert(ctx, sub); err != nil {
		return nil, err
	}

	snapshot := &domain.SubscriptionSnapshot{
		SubscriptionID: sub.ID,
		PlanID:         pid,
		OptionID:       oid,
		StartDate:      sub.StartedAt,
		EndDate:        sub.ExpiresAt,
		AdsQuota:       option.AdsQuota,
		IsActive:       true,
	}
	if err := s.users.SetSubscription(ctx, uid, snapshot); err != nil {
		s.logger.Error("Failed to attach subscription to user", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.Internal(err)
	}

	s.effects.Publish(ctx, domain.SubjectSubscriptionCreated, sub)
	s.notifier.Notify(ctx, Notice{
		UserID:  uid,
		Title:   "Your subscription is active",
		Message: fmt.Sprintf("%s is active until %s.", plan.Name, sub.ExpiresAt.Format("2006-01-02")),
		Type:    domain.NotifySubscriptionActive,
		Link:    "/subscriptions/me",
		Email:   true,
	})
	return sub, nil
}

func (s *SubscriptionService) cancel(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	if err := s.repo.SetStatus(ctx, sub.ID, domain.SubscriptionCanceled); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No subscription for this id " + sub.ID.Hex())
		}
		return nil, domain.Internal(err)
	}
	s.subscriptions.Invalidate(ctx)
	sub.Status = domain.SubscriptionCanceled
	s.detach(ctx, sub)
	s.effects.Publish(ctx, domain.SubjectSubscriptionCanceled, sub)
	return sub, nil
}

// detach deactivates the user's snapshot when it points at sub.
func (s *SubscriptionService) detach(ctx context.Context, sub *domain.Subscription) {
	user, err := s.userStore.FindByID(ctx, sub.UserID)
	if err != nil {
		s.logger.Warn("Failed to load subscription owner", zap.String("user_id", sub.UserID.Hex()), zap.Error(err))
		return
	}
	if user.Subscription == nil || user.Subscription.SubscriptionID != sub.ID {
		return
	}
	if err := s.users.DeactivateSubscription(ctx, sub.UserID); err != nil {
		s.logger.Error("Failed to deactivate user subscription", zap.String("user_id", sub.UserID.Hex()), zap.Error(err))
	}
}
