package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cotizador/quoter/internal/app/config"
	"github.com/cotizador/quoter/internal/app/http/handlers"
	"github.com/cotizador/quoter/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, deps handlers.Deps, checks map[string]handlers.Pinger) http.Handler {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	h := handlers.New(deps)

	r.Get("/health", handlers.Health(checks))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Tokens, cfg.InternalToken))

			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireStaff)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.ListCategories)
				r.Get("/{id}", h.GetCategory)
				r.With(middleware.RequireStaff).Post("/", h.CreateCategory)
				r.With(middleware.RequireStaff).Put("/{id}", h.UpdateCategory)
				r.With(middleware.RequireStaff).Delete("/{id}", h.DeleteCategory)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Get("/export.xlsx", h.ExportProducts)
				r.Get("/{id}", h.GetProduct)
				r.With(middleware.RequireStaff).Post("/", h.CreateProduct)
				r.With(middleware.RequireStaff).Put("/{id}", h.UpdateProduct)
				r.With(middleware.RequireStaff).Delete("/{id}", h.DeleteProduct)
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", h.ListQuotes)
				r.Post("/", h.CreateQuote)
				r.Get("/export.xlsx", h.ExportQuotes)
				r.Get("/{id}", h.GetQuote)
				r.Put("/{id}", h.UpdateQuote)
				r.Delete("/{id}", h.DeleteQuote)
				r.Get("/{id}/pdf", h.QuotePDF)
			})
		})
	})

	return r
}
