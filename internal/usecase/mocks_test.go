package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// memStore is an in-memory crud.Store keyed by id. Filters are ignored.
type memStore[T any, PT crud.Document[T]] struct {
	mu   sync.Mutex
	name string
	docs map[primitive.ObjectID]T
}

func newMemStore[T any, PT crud.Document[T]](name string) *memStore[T, PT] {
	return &memStore[T, PT]{name: name, docs: map[primitive.ObjectID]T{}}
}

func (s *memStore[T, PT]) put(doc *T) *T {
	if PT(doc).GetID().IsZero() {
		PT(doc).SetID(primitive.NewObjectID())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[PT(doc).GetID()] = *doc
	return doc
}

func (s *memStore[T, PT]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *memStore[T, PT]) Collection() string { return s.name }

func (s *memStore[T, PT]) Count(_ context.Context, _ bson.M) (int64, error) {
	return int64(s.len()), nil
}

func (s *memStore[T, PT]) Find(_ context.Context, _ crud.FindOptions) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

func (s *memStore[T, PT]) FindByID(_ context.Context, id primitive.ObjectID, _ ...crud.Populate) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (s *memStore[T, PT]) Insert(_ context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[PT(doc).GetID()] = *doc
	return nil
}

func (s *memStore[T, PT]) Replace(_ context.Context, id primitive.ObjectID, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	s.docs[id] = *doc
	return nil
}

func (s *memStore[T, PT]) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func newFactory[T any, PT crud.Document[T]](store crud.Store[T], res crud.Resource) *crud.Factory[T, PT] {
	return crud.NewFactory[T, PT](store, res, crud.WithClock(fixedClock), crud.WithLogger(logger.NewNop()))
}

func noEffects() Effects { return NewEffects(nil, logger.NewNop()) }

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetCode(ctx context.Context, hashedCode string, now time.Time) (*domain.User, error) {
	args := m.Called(ctx, hashedCode, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAdmins(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockUserRepository) ConsumeAdQuota(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.SubscriptionSnapshot, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubscriptionSnapshot), args.Error(1)
}

func (m *MockUserRepository) RefundAdQuota(ctx context.Context, userID primitive.ObjectID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) SetSubscription(ctx context.Context, userID primitive.ObjectID, snapshot *domain.SubscriptionSnapshot) error {
	return m.Called(ctx, userID, snapshot).Error(0)
}

func (m *MockUserRepository) DeactivateSubscription(ctx context.Context, userID primitive.ObjectID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockCompanyRepository struct{ mock.Mock }

func (m *MockCompanyRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepository) SetRating(ctx context.Context, id primitive.ObjectID, average float64, quantity int) error {
	return m.Called(ctx, id, average, quantity).Error(0)
}

func (m *MockCompanyRepository) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) error {
	return m.Called(ctx, id, approved).Error(0)
}

func (m *MockCompanyRepository) SetMedia(ctx context.Context, id primitive.ObjectID, field, url string) error {
	return m.Called(ctx, id, field, url).Error(0)
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) RatingStats(ctx context.Context, companyID primitive.ObjectID) (float64, int, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func (m *MockReviewRepository) ExistsForUser(ctx context.Context, userID, companyID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, userID, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) error {
	return m.Called(ctx, id, approved).Error(0)
}

func (m *MockReviewRepository) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCouponRepository struct{ mock.Mock }

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Redeem(ctx context.Context, code string, now time.Time) (*domain.Coupon, error) {
	args := m.Called(ctx, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponRepository) DeactivateExhausted(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCouponRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockSubscriptionRepository struct{ mock.Mock }

func (m *MockSubscriptionRepository) FindByPaymentID(ctx context.Context, paymentSubscriptionID string) (*domain.Subscription, error) {
	args := m.Called(ctx, paymentSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindCurrentByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.SubscriptionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockSubscriptionRepository) MarkPartiallyExpired(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionRepository) Due(ctx context.Context, t time.Time) ([]domain.Subscription, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) DueForNotice(ctx context.Context, t time.Time) ([]domain.Subscription, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	return m.Called(ctx, to, subject, htmlBody).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return m.Called(ctx, subject, data).Error(0)
}
