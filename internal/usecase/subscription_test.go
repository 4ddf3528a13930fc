package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type subscriptionFixture struct {
	subs     *memStore[domain.Subscription, *domain.Subscription]
	plans    *memStore[domain.Plan, *domain.Plan]
	users    *memStore[domain.User, *domain.User]
	repo     *MockSubscriptionRepository
	userRepo *MockUserRepository
	svc      *SubscriptionService
	user     *domain.User
	plan     *domain.Plan
}

func newSubscriptionFixture() *subscriptionFixture {
	fx := &subscriptionFixture{
		subs:     newMemStore[domain.Subscription, *domain.Subscription]("subscriptions"),
		plans:    newMemStore[domain.Plan, *domain.Plan]("plans"),
		users:    newMemStore[domain.User, *domain.User]("users"),
		repo:     &MockSubscriptionRepository{},
		userRepo: &MockUserRepository{},
	}
	fx.user = fx.users.put(&domain.User{Name: "Owner", Email: "owner@example.com", Role: domain.RoleUser})
	fx.plan = fx.plans.put(&domain.Plan{
		Name: "Gold",
		Code: "GOLD",
		Type: domain.PlanPremium,
		Options: []domain.PlanOption{
			{ID: primitive.NewObjectID(), Duration: 30, Price: 100, AdsQuota: 5},
		},
		IsActive: true,
	})
	fx.svc = NewSubscriptionService(SubscriptionDeps{
		Subscriptions: newFactory[domain.Subscription, *domain.Subscription](fx.subs, crud.Resource{Name: "subscription"}),
		Repo:          fx.repo,
		Plans:         fx.plans,
		Users:         fx.userRepo,
		UserStore:     fx.users,
		Effects:       noEffects(),
		Now:           fixedClock,
	}, logger.NewNop())
	return fx
}

func (fx *subscriptionFixture) event(kind string) *domain.PaymentEvent {
	return &domain.PaymentEvent{
		ID:   "evt_1",
		Type: kind,
		Data: domain.PaymentEventData{
			PaymentSubscriptionID: "sub_123",
			UserID:                fx.user.ID.Hex(),
			PlanID:                fx.plan.ID.Hex(),
			OptionID:              fx.plan.Options[0].ID.Hex(),
		},
	}
}

func TestHandlePaymentEvent_CreatedActivatesOnce(t *testing.T) {
	fx := newSubscriptionFixture()
	ctx := context.Background()

	var snapshot *domain.SubscriptionSnapshot
	fx.repo.On("FindByPaymentID", ctx, "sub_123").Return(nil, domain.ErrNotFound).Once()
	fx.repo.On("FindCurrentByUser", ctx, fx.user.ID).Return(nil, domain.ErrNotFound)
	fx.userRepo.On("SetSubscription", ctx, fx.user.ID, mock.Anything).
		Run(func(args mock.Arguments) { snapshot = args.Get(2).(*domain.SubscriptionSnapshot) }).
		Return(nil)

	sub, err := fx.svc.HandlePaymentEvent(ctx, fx.event(domain.PaymentSubscriptionCreated))
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.Equal(t, "sub_123", sub.PaymentSubscriptionID)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), sub.ExpiresAt)
	require.NotNil(t, snapshot)
	assert.Equal(t, sub.ID, snapshot.SubscriptionID)
	assert.Equal(t, 5, snapshot.AdsQuota)
	assert.Zero(t, snapshot.AdsUsed)
	assert.True(t, snapshot.IsActive)

	fx.repo.On("FindByPaymentID", ctx, "sub_123").Return(sub, nil)
	again, err := fx.svc.HandlePaymentEvent(ctx, fx.event(domain.PaymentSubscriptionCreated))
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
	assert.Equal(t, 1, fx.subs.len())
	fx.userRepo.AssertNumberOfCalls(t, "SetSubscription", 1)
}

func TestHandlePaymentEvent_Canceled(t *testing.T) {
	fx := newSubscriptionFixture()
	ctx := context.Background()
	sub := fx.subs.put(&domain.Subscription{
		UserID:                fx.user.ID,
		PlanID:                fx.plan.ID,
		OptionID:              fx.plan.Options[0].ID,
		PaymentSubscriptionID: "sub_123",
		Status:                domain.SubscriptionActive,
		ExpiresAt:             fixedNow.Add(time.Hour),
	})
	fx.user.Subscription = &domain.SubscriptionSnapshot{SubscriptionID: sub.ID, IsActive: true}
	fx.users.put(fx.user)

	fx.repo.On("FindByPaymentID", ctx, "sub_123").Return(sub, nil)
	fx.repo.On("SetStatus", ctx, sub.ID, domain.SubscriptionCanceled).Return(nil)
	fx.userRepo.On("DeactivateSubscription", ctx, fx.user.ID).Return(nil)

	got, err := fx.svc.HandlePaymentEvent(ctx, fx.event(domain.PaymentSubscriptionCanceled))
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCanceled, got.Status)
	fx.userRepo.AssertExpectations(t)
}

func TestHandlePaymentEvent_UnknownPlanOption(t *testing.T) {
	fx := newSubscriptionFixture()
	ctx := context.Background()
	fx.repo.On("FindByPaymentID", ctx, "sub_123").Return(nil, domain.ErrNotFound)

	ev := fx.event(domain.PaymentSubscriptionCreated)
	ev.Data.OptionID = primitive.NewObjectID().Hex()
	_, err := fx.svc.HandlePaymentEvent(ctx, ev)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
	assert.Equal(t, 0, fx.subs.len())
}

func TestExpireDue(t *testing.T) {
	fx := newSubscriptionFixture()
	ctx := context.Background()
	due := domain.Subscription{Base: domain.Base{ID: primitive.NewObjectID()}, UserID: fx.user.ID}
	fx.user.Subscription = &domain.SubscriptionSnapshot{SubscriptionID: due.ID, IsActive: true}
	fx.users.put(fx.user)

	fx.repo.On("Due", ctx, fixedNow).Return([]domain.Subscription{due}, nil)
	fx.repo.On("SetStatus", ctx, due.ID, domain.SubscriptionExpired).Return(nil)
	fx.userRepo.On("DeactivateSubscription", ctx, fx.user.ID).Return(nil)

	n, err := fx.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	fx.repo.AssertExpectations(t)
	fx.userRepo.AssertExpectations(t)
}

func TestNotifyExpiring_MarksNotified(t *testing.T) {
	fx := newSubscriptionFixture()
	ctx := context.Background()
	soon := domain.Subscription{Base: domain.Base{ID: primitive.NewObjectID()}, UserID: fx.user.ID, ExpiresAt: fixedNow.Add(48 * time.Hour)}

	fx.repo.On("DueForNotice", ctx, fixedNow.Add(72*time.Hour)).Return([]domain.Subscription{soon}, nil)
	fx.repo.On("MarkNotified", ctx, soon.ID).Return(nil)

	n, err := fx.svc.NotifyExpiring(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
