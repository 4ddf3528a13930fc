package usecase

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockAnalyticsRepository struct{ mock.Mock }

func (m *MockAnalyticsRepository) CountByEvent(ctx context.Context, companyID primitive.ObjectID) (map[string]int64, error) {
	args := m.Called(ctx, companyID)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func newAnalyticsFixture() (*AnalyticsService, *memStore[domain.AnalyticsRecord, *domain.AnalyticsRecord], *MockAnalyticsRepository, *domain.Company) {
	records := newMemStore[domain.AnalyticsRecord, *domain.AnalyticsRecord]("analytics")
	companies := newMemStore[domain.Company, *domain.Company]("companies")
	repo := &MockAnalyticsRepository{}
	company := companies.put(&domain.Company{CompanyName: "Kebab House", UserID: primitive.NewObjectID()})
	svc := NewAnalyticsService(
		newFactory[domain.AnalyticsRecord, *domain.AnalyticsRecord](records, crud.Resource{
			Name:      "analytics",
			Creatable: domain.AnalyticsCreatable,
		}),
		repo,
		companies,
		noEffects(),
	)
	return svc, records, repo, company
}

func TestAnalyticsTrack(t *testing.T) {
	svc, records, _, company := newAnalyticsFixture()

	anon, err := svc.Track(context.Background(), domain.Actor{}, map[string]interface{}{
		"companyId": company.ID.Hex(),
		"event":     "view",
	})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	visitor := domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}
	rec, err := svc.Track(context.Background(), visitor, map[string]interface{}{
		"companyId": company.ID.Hex(),
		"event":     "call",
		"userId":    primitive.NewObjectID().Hex(),
	})
	require.NoError(t, err)
	require.NotNil(t, rec.UserID)
	assert.Equal(t, visitor.ID, *rec.UserID)
	assert.Equal(t, 2, records.len())
}

func TestAnalyticsTrack_Rejects(t *testing.T) {
	svc, records, _, company := newAnalyticsFixture()

	_, err := svc.Track(context.Background(), domain.Actor{}, map[string]interface{}{
		"companyId": primitive.NewObjectID().Hex(),
		"event":     "view",
	})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = svc.Track(context.Background(), domain.Actor{}, map[string]interface{}{
		"companyId": company.ID.Hex(),
		"event":     "teleport",
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Zero(t, records.len())
}

func TestAnalyticsSummary_OwnerOrStaff(t *testing.T) {
	svc, _, repo, company := newAnalyticsFixture()
	repo.On("CountByEvent", mock.Anything, company.ID).
		Return(map[string]int64{"view": 7, "call": 2}, nil)

	summary, err := svc.Summary(context.Background(), domain.Actor{ID: company.UserID, Role: domain.RoleUser}, company.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(9), summary.Total)
	assert.Equal(t, int64(7), summary.Events["view"])

	_, err = svc.Summary(context.Background(), domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleManager}, company.ID.Hex())
	require.NoError(t, err)

	_, err = svc.Summary(context.Background(), domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}, company.ID.Hex())
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	repo.AssertNumberOfCalls(t, "CountByEvent", 2)
}
