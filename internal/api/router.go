package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/voxgate/voxgate/internal/api/handlers"
	"github.com/voxgate/voxgate/internal/api/middleware"
	"github.com/voxgate/voxgate/internal/audio"
	"github.com/voxgate/voxgate/internal/auth"
	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/pipeline"
	"github.com/voxgate/voxgate/internal/session"
	"github.com/voxgate/voxgate/internal/transcribe"
	"github.com/voxgate/voxgate/internal/web"
)

type Router struct {
	mux      *chi.Mux
	cfg      *config.Config
	sessions session.Store
	issuer   *auth.TokenIssuer
	gate     *auth.SessionMiddleware
	pipe     *pipeline.Pipeline
}

func NewRouter(cfg *config.Config, sessions session.Store) *Router {
	issuer := auth.NewTokenIssuer(cfg.Session.Secret, cfg.Session.Lifetime)
	converter := audio.NewConverter(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath, cfg.Audio.TempDir)
	provider := transcribe.NewProvider(cfg.Transcribe)
	return &Router{
		mux:      chi.NewRouter(),
		cfg:      cfg,
		sessions: sessions,
		issuer:   issuer,
		gate:     auth.NewSessionMiddleware(issuer, sessions),
		pipe:     pipeline.New(converter, provider),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)

	rl := middleware.NewRateLimiter(5, 10)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	pinger, _ := rt.sessions.(handlers.Pinger)
	health := handlers.NewHealthHandler(pinger)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Static assets
	r.Handle("/static/*", web.StaticHandler())

	// Login/logout (no session required)
	authH := handlers.NewAuthHandler(rt.cfg.Auth, rt.issuer, rt.sessions)
	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)
	r.Get("/logout", authH.Logout)

	// Session-gated pages
	uploadH := handlers.NewUploadHandler(rt.pipe, rt.cfg.Audio.MaxUploadMB)
	r.Group(func(r chi.Router) {
		r.Use(rt.gate.Authenticate)
		r.Get("/", uploadH.Form)
		r.Post("/upload", uploadH.Upload)
	})

	return r
}
