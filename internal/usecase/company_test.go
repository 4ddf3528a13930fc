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

type companyFixture struct {
	companies  *memStore[domain.Company, *domain.Company]
	categories *memStore[domain.Category, *domain.Category]
	users      *memStore[domain.User, *domain.User]
	plans      *memStore[domain.Plan, *domain.Plan]
	userRepo   *MockUserRepository
	repo       *MockCompanyRepository
	subs       *MockSubscriptionRepository
	reviews    *MockReviewRepository
	svc        *CompanyService
	category   *domain.Category
}

func newCompanyFixture() *companyFixture {
	fx := &companyFixture{
		companies:  newMemStore[domain.Company, *domain.Company]("companies"),
		categories: newMemStore[domain.Category, *domain.Category]("categories"),
		users:      newMemStore[domain.User, *domain.User]("users"),
		plans:      newMemStore[domain.Plan, *domain.Plan]("plans"),
		userRepo:   &MockUserRepository{},
		repo:       &MockCompanyRepository{},
		subs:       &MockSubscriptionRepository{},
		reviews:    &MockReviewRepository{},
	}
	fx.category = fx.categories.put(&domain.Category{NameAr: "مطاعم", NameEn: "Restaurants", NameTr: "Restoranlar"})
	fx.svc = NewCompanyService(CompanyDeps{
		Companies: newFactory[domain.Company, *domain.Company](fx.companies, crud.Resource{
			Name:       "company",
			Creatable:  domain.CompanyCreatable,
			Searchable: domain.CompanySearchable,
		}),
		Repo:          fx.repo,
		Categories:    fx.categories,
		Users:         fx.userRepo,
		UserStore:     fx.users,
		Plans:         fx.plans,
		Subscriptions: fx.subs,
		Reviews:       fx.reviews,
		Effects:       noEffects(),
		Now:           fixedClock,
	}, logger.NewNop())
	return fx
}

func (fx *companyFixture) subscriber(quota, used int) *domain.User {
	return fx.users.put(&domain.User{
		Name:  "Owner",
		Email: "owner@example.com",
		Role:  domain.RoleUser,
		Subscription: &domain.SubscriptionSnapshot{
			SubscriptionID: primitive.NewObjectID(),
			PlanID:         primitive.NewObjectID(),
			OptionID:       primitive.NewObjectID(),
			EndDate:        fixedNow.Add(24 * time.Hour),
			AdsQuota:       quota,
			AdsUsed:        used,
			IsActive:       true,
		},
	})
}

func (fx *companyFixture) payload() map[string]interface{} {
	return map[string]interface{}{
		"companyName": "Kebab House",
		"categoryId":  fx.category.ID.Hex(),
		"isApproved":  true,
		"views":       1000,
	}
}

func TestCompanyCreate_RequiresSubscription(t *testing.T) {
	fx := newCompanyFixture()
	user := fx.users.put(&domain.User{Name: "Nobody", Email: "n@example.com", Role: domain.RoleUser})

	_, err := fx.svc.Create(context.Background(), domain.Actor{ID: user.ID, Role: domain.RoleUser}, fx.payload())
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.Equal(t, 0, fx.companies.len())
	fx.userRepo.AssertNotCalled(t, "ConsumeAdQuota", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompanyCreate_ConsumesLastAdAndMarksSubscription(t *testing.T) {
	fx := newCompanyFixture()
	user := fx.subscriber(1, 0)
	ctx := context.Background()

	after := *user.Subscription
	after.AdsUsed = 1
	fx.userRepo.On("ConsumeAdQuota", ctx, user.ID, fixedNow).Return(&after, nil)
	fx.subs.On("MarkPartiallyExpired", ctx, after.SubscriptionID).Return(nil)
	fx.userRepo.On("FindAdmins", ctx).Return([]domain.User{}, nil)

	company, err := fx.svc.Create(ctx, domain.Actor{ID: user.ID, Role: domain.RoleUser}, fx.payload())
	require.NoError(t, err)
	assert.Equal(t, user.ID, company.UserID)
	assert.Equal(t, "kebab-house", company.Slug)
	assert.Equal(t, domain.AdTypeNormal, company.AdType)
	assert.False(t, company.IsApproved)
	assert.Zero(t, company.Views)
	fx.subs.AssertExpectations(t)
}

func TestCompanyCreate_QuotaRaceIsForbidden(t *testing.T) {
	fx := newCompanyFixture()
	user := fx.subscriber(1, 0)
	ctx := context.Background()
	fx.userRepo.On("ConsumeAdQuota", ctx, user.ID, fixedNow).Return(nil, domain.ErrQuotaExhausted)

	_, err := fx.svc.Create(ctx, domain.Actor{ID: user.ID, Role: domain.RoleUser}, fx.payload())
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.Equal(t, 0, fx.companies.len())
}

func TestCompanyCreate_RefundsQuotaOnValidationFailure(t *testing.T) {
	fx := newCompanyFixture()
	user := fx.subscriber(3, 0)
	ctx := context.Background()
	after := *user.Subscription
	after.AdsUsed = 1
	fx.userRepo.On("ConsumeAdQuota", ctx, user.ID, fixedNow).Return(&after, nil)
	fx.userRepo.On("RefundAdQuota", ctx, user.ID).Return(nil)

	payload := fx.payload()
	payload["companyName"] = "K"
	_, err := fx.svc.Create(ctx, domain.Actor{ID: user.ID, Role: domain.RoleUser}, payload)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	fx.userRepo.AssertCalled(t, "RefundAdQuota", ctx, user.ID)
}

func TestCompanyCreate_PlanMustCoverCategory(t *testing.T) {
	fx := newCompanyFixture()
	user := fx.subscriber(3, 0)
	other := primitive.NewObjectID()
	fx.plans.put(&domain.Plan{
		Base: domain.Base{ID: user.Subscription.PlanID},
		Name: "Food only",
		Options: []domain.PlanOption{{
			ID:                user.Subscription.OptionID,
			Duration:          30,
			AdsQuota:          3,
			AllowedCategories: []primitive.ObjectID{other},
		}},
		IsActive: true,
	})

	_, err := fx.svc.Create(context.Background(), domain.Actor{ID: user.ID, Role: domain.RoleUser}, fx.payload())
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestCompanyCreate_UnknownCategory(t *testing.T) {
	fx := newCompanyFixture()
	payload := fx.payload()
	payload["categoryId"] = primitive.NewObjectID().Hex()

	_, err := fx.svc.Create(context.Background(), domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}, payload)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestCompanyCreate_StaffSkipsQuotaAndIsApproved(t *testing.T) {
	fx := newCompanyFixture()
	admin := domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}

	company, err := fx.svc.Create(context.Background(), admin, fx.payload())
	require.NoError(t, err)
	assert.True(t, company.IsApproved)
	fx.userRepo.AssertNotCalled(t, "ConsumeAdQuota", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompanyUpdate_OnlyOwner(t *testing.T) {
	fx := newCompanyFixture()
	owner := primitive.NewObjectID()
	company := fx.companies.put(&domain.Company{
		CompanyName: "Kebab House",
		AdType:      domain.AdTypeNormal,
		UserID:      owner,
		CategoryID:  fx.category.ID,
	})
	ctx := context.Background()
	payload := map[string]interface{}{"companyName": "Better Kebab"}

	_, err := fx.svc.Update(ctx, domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}, company.ID.Hex(), payload)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	updated, err := fx.svc.Update(ctx, domain.Actor{ID: owner, Role: domain.RoleUser}, company.ID.Hex(), payload)
	require.NoError(t, err)
	assert.Equal(t, "Better Kebab", updated.CompanyName)
	assert.Equal(t, "better-kebab", updated.Slug)
	assert.Equal(t, owner, updated.UserID)
}

func TestCompanyGet_HidesUnapprovedFromStrangers(t *testing.T) {
	fx := newCompanyFixture()
	owner := primitive.NewObjectID()
	company := fx.companies.put(&domain.Company{CompanyName: "Hidden", UserID: owner, CategoryID: fx.category.ID})
	ctx := context.Background()
	fx.repo.On("IncrementViews", ctx, company.ID).Return(nil)

	_, err := fx.svc.Get(ctx, domain.Actor{}, company.ID.Hex())
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	got, err := fx.svc.Get(ctx, domain.Actor{ID: owner, Role: domain.RoleUser}, company.ID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Views)
}

func TestCompanyDelete_RemovesReviews(t *testing.T) {
	fx := newCompanyFixture()
	owner := primitive.NewObjectID()
	company := fx.companies.put(&domain.Company{CompanyName: "Gone", UserID: owner, CategoryID: fx.category.ID})
	ctx := context.Background()
	fx.reviews.On("DeleteByCompany", ctx, company.ID).Return(int64(2), nil)

	require.NoError(t, fx.svc.Delete(ctx, domain.Actor{ID: owner, Role: domain.RoleUser}, company.ID.Hex()))
	assert.Equal(t, 0, fx.companies.len())
	fx.reviews.AssertExpectations(t)

	err := fx.svc.Delete(ctx, domain.Actor{ID: owner, Role: domain.RoleUser}, company.ID.Hex())
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
