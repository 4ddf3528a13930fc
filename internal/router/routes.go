package router

import (
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

func userRoutes(r chi.Router, h Handlers, d Deps) {
	r.Use(d.Auth.RequireAuth)

	r.Get("/getMe", h.Users.GetMe)
	r.Put("/updateMe", h.Users.UpdateMe)
	r.Put("/changeMyPassword", h.Users.ChangeMyPassword)
	r.Delete("/deleteMe", h.Users.DeactivateMe)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireRoles(staff...))
		r.Get("/", h.Users.List)
		r.Post("/", h.Users.Create)
		r.Get("/{id}", h.Users.Get)
		r.Put("/{id}", h.Users.Update)
		r.Delete("/{id}", h.Users.Delete)
	})
	r.With(d.Auth.RequireRoles(domain.RoleAdmin)).Put("/changePassword/{id}", h.Users.ChangePassword)
}

func categoryRoutes(r chi.Router, h Handlers, d Deps) {
	r.Get("/", h.Categories.List)
	r.Get("/{id}", h.Categories.Get)
	r.With(d.Auth.OptionalAuth).Get("/{id}/companies", h.Companies.ListByCategory)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth, d.Auth.RequireRoles(domain.RoleAdmin))
		r.Post("/", h.Categories.Create)
		r.Put("/{id}", h.Categories.Update)
		r.Delete("/{id}", h.Categories.Delete)
		r.Patch("/{id}/image", h.Categories.UploadImage)
	})
}

func companyRoutes(r chi.Router, h Handlers, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.OptionalAuth)
		r.Get("/", h.Companies.List)
		r.Get("/{id}", h.Companies.Get)
		r.Get("/{id}/reviews", h.Reviews.ListForCompany)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth)
		r.Get("/me", h.Companies.ListMine)
		r.Post("/", h.Companies.Create)
		r.Put("/{id}", h.Companies.Update)
		r.Delete("/{id}", h.Companies.Delete)
		r.Patch("/{id}/logo", h.Companies.UploadLogo)
		r.Patch("/{id}/video", h.Companies.UploadVideo)
		r.Post("/{id}/reviews", h.Reviews.CreateForCompany)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.RequireRoles(staff...))
			r.Patch("/{id}/approve", h.Companies.Approve)
			r.Patch("/{id}/reject", h.Companies.Reject)
		})
	})
}

func reviewRoutes(r chi.Router, h Handlers, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.OptionalAuth)
		r.Get("/", h.Reviews.List)
		r.Get("/{id}", h.Reviews.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth)
		r.Post("/", h.Reviews.Create)
		r.Put("/{id}", h.Reviews.Update)
		r.Delete("/{id}", h.Reviews.Delete)
		r.With(d.Auth.RequireRoles(staff...)).Patch("/{id}/approve", h.Reviews.Approve)
		r.With(d.Auth.RequireRoles(staff...)).Patch("/{id}/reject", h.Reviews.Reject)
	})
}

func couponRoutes(r chi.Router, h Handlers, d Deps) {
	r.Use(d.Auth.RequireAuth)
	r.Post("/apply", h.Coupons.Apply)
	r.Post("/validate", h.Coupons.Validate)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireRoles(staff...))
		r.Get("/", h.Coupons.List)
		r.Post("/", h.Coupons.Create)
		r.Get("/{id}", h.Coupons.Get)
		r.Put("/{id}", h.Coupons.Update)
		r.Delete("/{id}", h.Coupons.Delete)
	})
}

func planRoutes(r chi.Router, h Handlers, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.OptionalAuth)
		r.Get("/", h.Plans.List)
		r.Get("/{id}", h.Plans.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth, d.Auth.RequireRoles(domain.RoleAdmin))
		r.Post("/", h.Plans.Create)
		r.Put("/{id}", h.Plans.Update)
		r.Delete("/{id}", h.Plans.Delete)
	})
}

func subscriptionRoutes(r chi.Router, h Handlers, d Deps) {
	r.Use(d.Auth.RequireAuth)
	r.Get("/me", h.Subscriptions.Me)
	r.Get("/mine", h.Subscriptions.ListMine)
	r.Get("/{id}", h.Subscriptions.Get)
	r.Patch("/{id}/cancel", h.Subscriptions.Cancel)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireRoles(domain.RoleAdmin))
		r.Get("/", h.Subscriptions.List)
		r.Post("/", h.Subscriptions.Create)
		r.Delete("/{id}", h.Subscriptions.Delete)
	})
}

func campaignRoutes(r chi.Router, h Handlers, d Deps) {
	r.Use(d.Auth.RequireAuth)
	r.Get("/", h.Campaigns.List)
	r.Post("/", h.Campaigns.Create)
	r.Get("/{id}", h.Campaigns.Get)
	r.Put("/{id}", h.Campaigns.Update)
	r.Delete("/{id}", h.Campaigns.Delete)
}

func notificationRoutes(r chi.Router, h Handlers, d Deps) {
	r.Use(d.Auth.RequireAuth)
	r.Get("/", h.Notifications.ListMine)
	r.Patch("/read-all", h.Notifications.MarkAllRead)
	r.Patch("/{id}/read", h.Notifications.MarkRead)
	r.Delete("/{id}", h.Notifications.Delete)
	r.With(d.Auth.RequireRoles(staff...)).Post("/", h.Notifications.Send)
}

func analyticsRoutes(r chi.Router, h Handlers, d Deps) {
	r.With(d.Auth.OptionalAuth).Post("/track", h.Analytics.Track)
	r.With(d.Auth.RequireAuth).Get("/companies/{id}", h.Analytics.Summary)
}

func miaRoutes(r chi.Router, h Handlers, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.OptionalAuth)
		r.Get("/", h.Mia.List)
		r.Get("/{id}", h.Mia.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth, d.Auth.RequireRoles(domain.RoleAdmin))
		r.Post("/", h.Mia.Create)
		r.Put("/{id}", h.Mia.Update)
		r.Delete("/{id}", h.Mia.Delete)
	})
}
