package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-crud-api/internal/config"
	"go-crud-api/internal/handler"
	"go-crud-api/internal/metrics"
	"go-crud-api/internal/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Books     *handler.BookHandler
	Cars      *handler.CarHandler
	Demo      *handler.DemoHandler
	External  *handler.ExternalHandler
	Health    *handler.HealthHandler
	Docs      *handler.DocsHandler
	FormLogin *handler.FormLoginHandler
}

// New mounts the filter chain in a fixed order: request logging and panic
// recovery wrap everything, the authentication filter runs on every request,
// and Authorize rejects non-public paths that end up without a principal.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(m.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigins, !cfg.StatelessSessions))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(authMiddleware.Authenticate)
	r.Use(authMiddleware.Authorize)

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/openapi.json", h.Docs.OpenAPIJSON)
	r.Get("/swagger", h.Docs.SwaggerUI)

	if h.FormLogin != nil {
		r.Get("/login", h.FormLogin.Form)
		r.Post("/login", h.FormLogin.Submit)
		r.Post("/logout", h.FormLogin.Logout)
	}

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/login", h.Auth.Login)
		auth.Get("/me", h.Auth.Me)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/public", h.Demo.Public)
		api.Get("/private", h.Demo.Private)
		api.Get("/secure", h.Demo.Secure)
		api.With(authMiddleware.RequireRoles("ADMIN")).Get("/admin", h.Demo.Admin)
		api.Get("/external", h.External.Call)
	})

	r.Route("/books", func(books chi.Router) {
		books.Get("/", h.Books.List)
		books.Post("/", h.Books.Create)
		books.Get("/{id}", h.Books.Get)
		books.Put("/{id}", h.Books.Put)
		books.Delete("/{id}", h.Books.Delete)
	})

	r.Route("/cars", func(cars chi.Router) {
		cars.Get("/", h.Cars.List)
		cars.Post("/", h.Cars.Create)
		cars.Get("/{id}", h.Cars.Get)
		cars.Put("/{id}", h.Cars.Put)
		cars.Delete("/{id}", h.Cars.Delete)
	})

	return r
}
