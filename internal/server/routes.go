package server

import (
	"compress/gzip"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/handler"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/middleware"
)

func (s *Server) setupRoutes(handler *handler.Handler) {
	s.setupMiddleware()

	auth := middleware.Auth(s.tokens)

	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/memberships", http.HandlerFunc(handler.GetMemberships))

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", http.HandlerFunc(handler.Register))
			r.Post("/login", http.HandlerFunc(handler.Login))

			r.With(auth).Route("/points", func(r chi.Router) {
				r.Get("/", http.HandlerFunc(handler.GetPoints))
				r.Get("/history", http.HandlerFunc(handler.GetPointsHistory))
				r.Post("/daily", http.HandlerFunc(handler.ClaimDailyLogin))
			})
		})

		r.With(auth).Post("/cart/validate", http.HandlerFunc(handler.ValidateCart))

		r.With(auth).Route("/orders", func(r chi.Router) {
			r.Post("/", http.HandlerFunc(handler.PlaceOrder))
			r.Get("/", http.HandlerFunc(handler.GetOrders))
			r.Patch("/{number}/status", http.HandlerFunc(handler.UpdateOrderStatus))
		})

		r.With(auth).Route("/products/{id}", func(r chi.Router) {
			r.Post("/reviews", http.HandlerFunc(handler.SubmitReview))
			r.Post("/interactions", http.HandlerFunc(handler.TrackInteraction))
		})

		if s.config.AdminToken != "" {
			r.With(middleware.AdminToken(s.config.AdminToken)).
				Patch("/admin/orders/{number}/status", http.HandlerFunc(handler.FulfilOrder))
		}
	})
}

func (s *Server) setupMiddleware() {
	s.mux.Use(
		chiMiddleware.RequestID,
		chiMiddleware.Recoverer,
		middleware.Logger,
		middleware.DecompressBodyReader,
		chiMiddleware.Compress(gzip.BestCompression, "application/json", "text/html", "text/plain"),
	)
}
