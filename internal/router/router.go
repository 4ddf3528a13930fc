// Package router mounts every resource under /api/v1 with its middleware.
package router

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/handler"
	mw "github.com/Abdurahmanit/GroupProject/adwall-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Categories    *handler.CategoryHandler
	Companies     *handler.CompanyHandler
	Reviews       *handler.ReviewHandler
	Coupons       *handler.CouponHandler
	Plans         *handler.PlanHandler
	Subscriptions *handler.SubscriptionHandler
	Campaigns     *handler.CampaignHandler
	Notifications *handler.NotificationHandler
	Analytics     *handler.AnalyticsHandler
	Mia           *handler.MiaHandler
	Health        *handler.HealthHandler
}

type Deps struct {
	ServiceName string
	Responder   *handler.Responder
	Auth        *mw.Auth
	Limiter     *mw.RateLimiter
	AuthLimiter *mw.RateLimiter
	Metrics     *metrics.MetricsManager
	Logger      *logger.Logger
	Timeout     time.Duration
}

var staff = []domain.Role{domain.RoleAdmin, domain.RoleManager}

func New(h Handlers, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Recovery(d.Responder, d.Logger))
	r.Use(mw.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(mw.Metrics(d.Metrics))
	}
	r.Use(mw.Tracing(d.ServiceName))
	if d.Timeout > 0 {
		r.Use(middleware.Timeout(d.Timeout))
	}

	r.NotFound(d.Responder.NotFound)
	r.MethodNotAllowed(d.Responder.NotFound)

	r.Get("/healthz", h.Health.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		r.Post("/webhooks/payment", h.Subscriptions.PaymentWebhook)

		r.Route("/auth", func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgotPassword", h.Auth.ForgotPassword)
			r.Post("/verifyResetCode", h.Auth.VerifyResetCode)
			r.Put("/resetPassword", h.Auth.ResetPassword)
		})

		r.Route("/users", func(r chi.Router) { userRoutes(r, h, d) })
		r.Route("/categories", func(r chi.Router) { categoryRoutes(r, h, d) })
		r.Route("/companies", func(r chi.Router) { companyRoutes(r, h, d) })
		r.Route("/reviews", func(r chi.Router) { reviewRoutes(r, h, d) })
		r.Route("/coupons", func(r chi.Router) { couponRoutes(r, h, d) })
		r.Route("/plans", func(r chi.Router) { planRoutes(r, h, d) })
		r.Route("/subscriptions", func(r chi.Router) { subscriptionRoutes(r, h, d) })
		r.Route("/campaigns", func(r chi.Router) { campaignRoutes(r, h, d) })
		r.Route("/notifications", func(r chi.Router) { notificationRoutes(r, h, d) })
		r.Route("/analytics", func(r chi.Router) { analyticsRoutes(r, h, d) })
		r.Route("/mia", func(r chi.Router) { miaRoutes(r, h, d) })
	})
	return r
}
