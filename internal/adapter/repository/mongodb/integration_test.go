//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/query"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))

	var client *mongo.Client
	if err := pool.Retry(func() error {
		var errRetry error
		client, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if errRetry != nil {
			return errRetry
		}
		return client.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	testDB = client.Database("adwall_test")
	if err := EnsureIndexes(context.Background(), testDB, logger.NewNop()); err != nil {
		log.Fatalf("Could not create indexes: %s", err)
	}

	code := m.Run()

	_ = client.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func clean(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := testDB.Collection(name).DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err)
	}
}

func companyFactory(repo *CompanyRepository) *crud.Factory[domain.Company, *domain.Company] {
	return crud.NewFactory[domain.Company, *domain.Company](repo, crud.Resource{
		Name:       "company",
		Creatable:  domain.CompanyCreatable,
		Searchable: domain.CompanySearchable,
		Filter:     query.FilterOptions{ExactFields: domain.CompanyExactFields},
		Populate: []crud.Populate{
			{Field: "categoryId", As: "category", Collection: CategoriesCollection, Select: []string{"nameEn"}},
		},
	})
}

func newCompany(f *crud.Factory[domain.Company, *domain.Company], name string, categoryID primitive.ObjectID) (*domain.Company, error) {
	owner := primitive.NewObjectID()
	return f.Create(context.Background(), map[string]interface{}{
		"companyName": name,
		"categoryId":  categoryID.Hex(),
		"adType":      "normal",
	}, func(_ context.Context, c *domain.Company) error {
		c.UserID = owner
		return nil
	})
}

func TestCompanyListByCategory(t *testing.T) {
	clean(t, CompaniesCollection, CategoriesCollection)
	ctx := context.Background()
	repo := NewCompanyRepository(testDB, logger.NewNop())
	f := companyFactory(repo)

	cat := domain.Category{Base: domain.Base{ID: primitive.NewObjectID()}, NameAr: "سيارات", NameEn: "Cars", NameTr: "Arabalar"}
	_, err := testDB.Collection(CategoriesCollection).InsertOne(ctx, cat)
	require.NoError(t, err)
	other := primitive.NewObjectID()

	_, err = newCompany(f, "A", cat.ID)
	require.NoError(t, err)
	_, err = newCompany(f, "B", cat.ID)
	require.NoError(t, err)
	_, err = newCompany(f, "C", other)
	require.NoError(t, err)

	res, err := f.List(ctx, nil, url.Values{"categoryId": {cat.ID.Hex()}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Results)
	for _, c := range res.Data {
		assert.Equal(t, cat.ID, c.CategoryID)
		assert.Equal(t, "Cars", c.Category["nameEn"])
	}
}

func TestTextFilterIsCaseInsensitiveSubstring(t *testing.T) {
	clean(t, CompaniesCollection)
	ctx := context.Background()
	f := companyFactory(NewCompanyRepository(testDB, logger.NewNop()))

	_, err := newCompany(f, "Foobar", primitive.NewObjectID())
	require.NoError(t, err)
	_, err = newCompany(f, "Other", primitive.NewObjectID())
	require.NoError(t, err)

	res, err := f.List(ctx, nil, url.Values{"companyName": {"foo"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Results)
	assert.Equal(t, "Foobar", res.Data[0].CompanyName)
}

func TestCreateGetRoundTripAndDeleteTwice(t *testing.T) {
	clean(t, CompaniesCollection)
	ctx := context.Background()
	f := companyFactory(NewCompanyRepository(testDB, logger.NewNop()))
	categoryID := primitive.NewObjectID()

	created, err := newCompany(f, "Roundtrip", categoryID)
	require.NoError(t, err)

	got, err := f.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.CompanyName, got.CompanyName)
	assert.Equal(t, created.CategoryID, got.CategoryID)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, created.AdType, got.AdType)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)

	require.NoError(t, f.Delete(ctx, created.ID.Hex()))
	err = f.Delete(ctx, created.ID.Hex())
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestDuplicateKeyNamesField(t *testing.T) {
	clean(t, UsersCollection)
	ctx := context.Background()
	repo := NewUserRepository(testDB, logger.NewNop())

	u1 := &domain.User{Base: domain.Base{ID: primitive.NewObjectID()}, Name: "One", Email: "dup@example.com", Role: domain.RoleUser}
	u2 := &domain.User{Base: domain.Base{ID: primitive.NewObjectID()}, Name: "Two", Email: "dup@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Insert(ctx, u1))

	err := repo.Insert(ctx, u2)
	var dup *domain.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestRatingStatsAveragesApprovedReviews(t *testing.T) {
	clean(t, ReviewsCollection)
	ctx := context.Background()
	repo := NewReviewRepository(testDB, logger.NewNop())
	companyID := primitive.NewObjectID()

	for _, r := range []struct {
		ratings  float64
		approved bool
	}{{4, true}, {5, true}, {1, false}} {
		require.NoError(t, repo.Insert(ctx, &domain.Review{
			Base:       domain.Base{ID: primitive.NewObjectID()},
			Ratings:    r.ratings,
			UserID:     primitive.NewObjectID(),
			CompanyID:  companyID,
			IsApproved: r.approved,
		}))
	}

	avg, count, err := repo.RatingStats(ctx, companyID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, avg, 0.0001)
	assert.Equal(t, 2, count)

	avg, count, err = repo.RatingStats(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)
}

func TestCouponRedeemRespectsMaxUses(t *testing.T) {
	clean(t, CouponsCollection)
	ctx := context.Background()
	repo := NewCouponRepository(testDB, logger.NewNop())
	now := time.Now().UTC()
	one := 1

	coupon := &domain.Coupon{
		Base:          domain.Base{ID: primitive.NewObjectID()},
		Code:          "ONCE",
		ExpiryDate:    now.Add(24 * time.Hour),
		DiscountValue: 10,
		DiscountType:  domain.DiscountFixed,
		MaxUses:       &one,
		IsActive:      true,
	}
	require.NoError(t, repo.Insert(ctx, coupon))

	redeemed, err := repo.Redeem(ctx, "once", now)
	require.NoError(t, err)
	assert.Equal(t, 1, redeemed.UsedCount)

	_, err = repo.Redeem(ctx, "ONCE", now)
	assert.ErrorIs(t, err, domain.ErrCouponUnavailable)

	require.NoError(t, repo.DeactivateExhausted(ctx, coupon.ID))
	stored, err := repo.FindByCode(ctx, "ONCE")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestCouponRedeemConcurrent(t *testing.T) {
	clean(t, CouponsCollection)
	ctx := context.Background()
	repo := NewCouponRepository(testDB, logger.NewNop())
	now := time.Now().UTC()
	limit := 3

	require.NoError(t, repo.Insert(ctx, &domain.Coupon{
		Base:         domain.Base{ID: primitive.NewObjectID()},
		Code:         "RACE",
		ExpiryDate:   now.Add(time.Hour),
		DiscountType: domain.DiscountPercentage,
		MaxUses:      &limit,
		IsActive:     true,
	}))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Redeem(ctx, "RACE", now); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, success)
}

func TestCouponRedeemRejectsExpired(t *testing.T) {
	clean(t, CouponsCollection)
	ctx := context.Background()
	repo := NewCouponRepository(testDB, logger.NewNop())
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, &domain.Coupon{
		Base:         domain.Base{ID: primitive.NewObjectID()},
		Code:         "OLD",
		ExpiryDate:   now.Add(-time.Hour),
		DiscountType: domain.DiscountFixed,
		IsActive:     true,
	}))

	_, err := repo.Redeem(ctx, "OLD", now)
	assert.ErrorIs(t, err, domain.ErrCouponUnavailable)

	n, err := repo.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestConsumeAdQuota(t *testing.T) {
	clean(t, UsersCollection)
	ctx := context.Background()
	repo := NewUserRepository(testDB, logger.NewNop())
	now := time.Now().UTC()

	user := &domain.User{
		Base:  domain.Base{ID: primitive.NewObjectID()},
		Name:  "Quota",
		Email: "quota@example.com",
		Role:  domain.RoleUser,
		Subscription: &domain.SubscriptionSnapshot{
			StartDate: now.Add(-time.Hour),
			EndDate:   now.Add(time.Hour),
			AdsQuota:  1,
			IsActive:  true,
		},
	}
	require.NoError(t, repo.Insert(ctx, user))

	snap, err := repo.ConsumeAdQuota(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.AdsUsed)

	_, err = repo.ConsumeAdQuota(ctx, user.ID, now)
	assert.ErrorIs(t, err, domain.ErrQuotaExhausted)
}
