// Package app wires configuration, adapters and services into a runnable
// process. Both the API server and the jobs runner build on it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/cache"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/email"
	natsAdapter "github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/payment"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/handler"
	mw "github.com/Abdurahmanit/GroupProject/adwall-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/router"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Services are the resource services of the marketplace.
type Services struct {
	Auth          *usecase.AuthService
	Users         *usecase.UserService
	Categories    *usecase.CategoryService
	Companies     *usecase.CompanyService
	Reviews       *usecase.ReviewService
	Coupons       *usecase.CouponService
	Plans         *usecase.PlanService
	Subscriptions *usecase.SubscriptionService
	Campaigns     *usecase.CampaignService
	Notifications *usecase.NotificationService
	Analytics     *usecase.AnalyticsService
	Mia           *usecase.MiaService
	Jobs          *usecase.Jobs
}

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.MetricsManager
	Services Services

	client  *mongo.Client
	closers []func()
}

// New connects to MongoDB and every optional backend that is configured.
// Optional backends that are configured but unreachable fail startup.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.NewMetricsManager(cfg.ServiceName),
	}

	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout, log)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.closers = append(a.closers, func() { mongodb.Disconnect(client, log) })
	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db, log); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	listCache, err := a.listCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var events domain.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, cfg.ServiceName, a.Metrics.EventsPublished, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		events = publisher
	} else {
		log.Info("NATS_URL not set, domain events are not published")
	}

	var storage domain.FileStorage
	if cfg.MinIOEndpoint != "" {
		s, err := s3.NewStorage(ctx, s3.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		storage = s
	} else {
		log.Info("MINIO_ENDPOINT not set, uploads are disabled")
	}

	var mailer domain.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewMailer(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
	} else {
		log.Info("SMTP_HOST not set, e-mails are not sent")
	}

	a.Services = buildServices(db, cfg, log, listCache, events, storage, mailer, a.Metrics)
	return a, nil
}

func (a *App) listCache(ctx context.Context) (crud.ListCache, error) {
	switch strings.ToLower(a.Config.CacheDriver) {
	case "redis":
		c, err := cache.NewRedisCache(ctx, a.Config.RedisAddress, a.Config.RedisPassword, a.Config.RedisDB, a.Config.ServiceName+":")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := c.Close(); err != nil {
				a.Logger.Warn("Failed to close redis", zap.Error(err))
			}
		})
		return c, nil
	case "memory":
		return cache.NewMemoryCache(a.Config.CacheTTL, 2*a.Config.CacheTTL), nil
	default:
		return nil, nil
	}
}

func buildServices(
	db *mongo.Database,
	cfg *config.Config,
	log *logger.Logger,
	listCache crud.ListCache,
	events domain.EventPublisher,
	storage domain.FileStorage,
	mailer domain.Mailer,
	m *metrics.MetricsManager,
) Services {
	opts := []crud.Option{crud.WithLogger(log)}
	// Only catalogue lists are cached. Their services purge the
	// cache after every write that bypasses the factory, except view counts,
	// which may lag by up to CacheTTL.
	cached := opts
	if listCache != nil {
		cached = append([]crud.Option{crud.WithCache(listCache, cfg.CacheTTL)}, opts...)
	}
	effects := usecase.NewEffects(events, log, m.ObserveEvent)

	users := mongodb.NewUserRepository(db, log)
	categories := mongodb.NewCategoryRepository(db, log)
	companies := mongodb.NewCompanyRepository(db, log)
	reviews := mongodb.NewReviewRepository(db, log)
	coupons := mongodb.NewCouponRepository(db, log)
	subscriptions := mongodb.NewSubscriptionRepository(db, log)
	notifications := mongodb.NewNotificationRepository(db, log)
	analytics := mongodb.NewAnalyticsRepository(db, log)
	plans := mongodb.NewCollection[domain.Plan](db, mongodb.PlansCollection, log)
	campaigns := mongodb.NewCollection[domain.Campaign](db, mongodb.CampaignsCollection, log)
	mia := mongodb.NewCollection[domain.Mia](db, mongodb.MiaCollection, log)

	companyFactory := crud.NewFactory[domain.Company, *domain.Company](companies, companyResource, cached...)
	userFactory := crud.NewFactory[domain.User, *domain.User](users, userResource, opts...)
	tokens := usecase.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn, nil)

	notifier := usecase.NewNotificationService(
		crud.NewFactory[domain.Notification, *domain.Notification](notifications, notificationResource, opts...),
		notifications, users, users, mailer, log,
	)

	s := Services{
		Auth:  usecase.NewAuthService(userFactory, users, tokens, mailer, nil, log),
		Users: usecase.NewUserService(userFactory, users, tokens, nil, log),
		Categories: usecase.NewCategoryService(
			crud.NewFactory[domain.Category, *domain.Category](categories, categoryResource, cached...),
			categories, storage, log,
		),
		Companies: usecase.NewCompanyService(usecase.CompanyDeps{
			Companies:     companyFactory,
			Repo:          companies,
			Categories:    categories,
			Users:         users,
			UserStore:     users,
			Plans:         plans,
			Subscriptions: subscriptions,
			Reviews:       reviews,
			Notifier:      notifier,
			Storage:       storage,
			Effects:       effects,
		}, log),
		Reviews: usecase.NewReviewService(
			crud.NewFactory[domain.Review, *domain.Review](reviews, reviewResource, opts...),
			reviews, companyFactory, companies, notifier, effects, log,
		),
		Coupons: usecase.NewCouponService(
			crud.NewFactory[domain.Coupon, *domain.Coupon](coupons, couponResource, cached...),
			coupons, effects, nil, log,
		),
		Plans: usecase.NewPlanService(crud.NewFactory[domain.Plan, *domain.Plan](plans, planResource, cached...)),
		Subscriptions: usecase.NewSubscriptionService(usecase.SubscriptionDeps{
			Subscriptions: crud.NewFactory[domain.Subscription, *domain.Subscription](subscriptions, subscriptionResource, opts...),
			Repo:          subscriptions,
			Plans:         plans,
			Users:         users,
			UserStore:     users,
			Notifier:      notifier,
			Effects:       effects,
		}, log),
		Campaigns: usecase.NewCampaignService(
			crud.NewFactory[domain.Campaign, *domain.Campaign](campaigns, campaignResource, opts...),
			companies,
		),
		Notifications: notifier,
		Analytics: usecase.NewAnalyticsService(
			crud.NewFactory[domain.AnalyticsRecord, *domain.AnalyticsRecord](analytics, analyticsResource, opts...),
			analytics, companies, effects,
		),
		Mia: usecase.NewMiaService(crud.NewFactory[domain.Mia, *domain.Mia](mia, miaResource, cached...)),
	}
	s.Jobs = usecase.NewJobs(s.Coupons, s.Subscriptions, cfg.ExpiryNoticeWindow, log)
	s.Jobs.OnRun(m.ObserveJobRun)
	return s
}

// Ping checks the primary is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.client.Ping(ctx, readpref.Primary())
}

// Handler builds the HTTP API. Rate limiter cleanup stops when ctx is done.
func (a *App) Handler(ctx context.Context) http.Handler {
	cfg := a.Config
	rs := handler.NewResponder(cfg.IsDevelopment(), a.Logger)
	s := a.Services

	deps := router.Deps{
		ServiceName: cfg.ServiceName,
		Responder:   rs,
		Auth:        mw.NewAuth(s.Auth, rs),
		Metrics:     a.Metrics,
		Logger:      a.Logger,
		Timeout:     time.Minute,
	}
	if cfg.RateLimitRPS > 0 {
		deps.Limiter = mw.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, rs)
	}
	if cfg.AuthRateLimitRPS > 0 {
		deps.AuthLimiter = mw.NewRateLimiter(ctx, cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, rs)
	}

	return router.New(router.Handlers{
		Auth:          handler.NewAuthHandler(s.Auth, rs),
		Users:         handler.NewUserHandler(s.Users, rs),
		Categories:    handler.NewCategoryHandler(s.Categories, rs, cfg.MaxUploadBytes),
		Companies:     handler.NewCompanyHandler(s.Companies, rs, cfg.MaxUploadBytes),
		Reviews:       handler.NewReviewHandler(s.Reviews, rs),
		Coupons:       handler.NewCouponHandler(s.Coupons, rs),
		Plans:         handler.NewPlanHandler(s.Plans, rs),
		Subscriptions: handler.NewSubscriptionHandler(s.Subscriptions, payment.NewVerifier(cfg.PaymentWebhookSecret), rs),
		Campaigns:     handler.NewCampaignHandler(s.Campaigns, rs),
		Notifications: handler.NewNotificationHandler(s.Notifications, rs),
		Analytics:     handler.NewAnalyticsHandler(s.Analytics, rs),
		Mia:           handler.NewMiaHandler(s.Mia, rs),
		Health:        handler.NewHealthHandler(a.Ping),
	}, deps)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
