/*
Package handler provides the HTTP handlers and routing setup for the roomchat server.

The router applies request logging, CORS and panic recovery globally, IP-based rate
limiting on account and room creation, and session token extraction on /api.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/limiter"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
)

const (
	CreateRate  = 0.05
	CreateBurst = 3
	AuthRate    = 0.2
	AuthBurst   = 10
)

// Router sets up the main HTTP routing table. Limiter cleanup stops when ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(CreateRate), CreateBurst)
	authLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(AuthRate), AuthBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "roomchat",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
			auth.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))
			auth.Get("/google/start", HandleGoogleStart(deps))
			auth.Get("/google/callback", HandleGoogleCallback(deps))
		})

		api.Get("/user/profile", HandleGetUserProfile(deps))
		api.Get("/users/{username}", HandleGetUserByUsername(deps))

		api.Route("/rooms", func(rooms chi.Router) {
			rooms.With(createLimiter.Middleware).Post("/", HandleCreateRoom(deps))
			rooms.Get("/", HandleListPublicRooms(deps))
			rooms.Get("/joined", HandleListJoinedRooms(deps))

			rooms.Route("/{roomID}", func(one chi.Router) {
				one.Get("/", HandleGetRoom(deps))
				one.Get("/members", HandleListMembers(deps))
				one.Post("/invite", HandleInvite(deps))
				one.Post("/rename", HandleRename(deps))
				one.Post("/disable", HandleDisable(deps))
				one.Post("/enter", HandleEnter(deps))
				one.Post("/exit", HandleExit(deps))
			})
		})
	})

	return r
}
