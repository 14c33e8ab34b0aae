package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Use(handler.Gate)
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	if handler.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(handler.metrics, promhttp.HandlerOpts{})))
	}

	app.Get("/", handler.ShowHome)
	app.Get("/login", handler.ShowLoginPage)
	app.Get("/signup", handler.ShowSignupPage)
	app.Get("/auth/callback", handler.AuthCallback)
	app.Get("/onboarding", handler.ShowOnboarding)
	app.Get("/dashboard", handler.ShowDashboard)
	app.Get("/test-pack", handler.ShowTestPack)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", handler.Signup)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Post("/magic-link", handler.MagicLink)

	api.Post("/onboarding", handler.SessionRequired, handler.CompleteOnboarding)
	api.Post("/test-pack", handler.SessionRequired, handler.CreateTestPack)
}
