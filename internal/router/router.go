package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/feteer-counter/api/internal/config"
	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/handler"
	mw "github.com/feteer-counter/api/internal/middleware"
	"github.com/feteer-counter/api/internal/service"
	"github.com/feteer-counter/api/internal/ws"
)

// New creates a Chi router with all counter routes wired up.
func New(cfg *config.Config, queries *database.Queries, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(cfg.StaffUsername, cfg.StaffPasswordHash, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		orderService := service.NewOrderService(queries)
		orderHandler := handler.NewOrderHandler(orderService, queries, hub)
		r.Route("/orders", orderHandler.RegisterRoutes)

		menuHandler := handler.NewMenuHandler(queries)
		r.Route("/menu", menuHandler.RegisterRoutes)

		reportsHandler := handler.NewReportsHandler(queries)
		r.Route("/reports", reportsHandler.RegisterRoutes)

		exportHandler := handler.NewExportHandler(queries)
		r.Route("/export", exportHandler.RegisterRoutes)
	})

	return r
}
