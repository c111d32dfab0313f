package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/paragonmech/leadbook/internal/auth"
	"github.com/paragonmech/leadbook/internal/handler"
	"github.com/paragonmech/leadbook/internal/middleware"
	"github.com/paragonmech/leadbook/internal/notify"
	"github.com/paragonmech/leadbook/internal/store"
	ws "github.com/paragonmech/leadbook/internal/websocket"
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	IDTokenSecret   string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	SecureCookie    bool
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	leadH        *handler.LeadHandler
	followupH    *handler.FollowupHandler
	authH        *handler.AuthHandler
	pushH        *handler.PushHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	scheduler    *notify.Scheduler
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	leadStore := store.NewLeadStore(db)
	followupStore := store.NewFollowupStore(db)
	accountStore := store.NewAccountStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)

	verifier := auth.NewJWTVerifier([]byte(cfg.IDTokenSecret))
	authSvc := auth.NewService(accountStore, sessionStore, verifier)

	// Reminders need VAPID keys; without them the push routes still work
	// for subscription bookkeeping but nothing is ever sent.
	var scheduler *notify.Scheduler
	pushSvc := notify.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		scheduler = notify.NewScheduler(pushSvc, followupStore, pushStore, logger.With("component", "scheduler"))
	}

	return &Server{
		db:           db,
		hub:          hub,
		leadH:        handler.NewLeadHandler(leadStore, hub, logger.With("component", "lead")),
		followupH:    handler.NewFollowupHandler(followupStore, hub, logger.With("component", "followup")),
		authH:        handler.NewAuthHandler(authSvc, cfg.SecureCookie, logger.With("component", "auth")),
		pushH:        handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		scheduler:    scheduler,
		logger:       logger,
	}
}

// Scheduler returns the reminder scheduler, nil when VAPID keys are not
// configured.
func (s *Server) Scheduler() *notify.Scheduler {
	return s.scheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/google", s.rateLimitedHandler(s.authH.GoogleLogin))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session routes
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Lead API routes
	mux.HandleFunc("POST /api/leads", s.leadH.Create)
	mux.HandleFunc("GET /api/leads", s.leadH.List)
	mux.HandleFunc("GET /api/leads/stats", s.leadH.Stats)
	mux.HandleFunc("GET /api/leads/{id}", s.leadH.Get)
	mux.HandleFunc("PATCH /api/leads/{id}", s.leadH.Update)
	mux.HandleFunc("DELETE /api/leads/{id}", s.leadH.Delete)
	mux.HandleFunc("POST /api/leads/{id}/notes", s.leadH.AddNote)
	mux.HandleFunc("DELETE /api/leads/{id}/notes/{note_id}", s.leadH.DeleteNote)

	// Follow-up API routes
	mux.HandleFunc("POST /api/followups", s.followupH.Schedule)
	mux.HandleFunc("GET /api/followups/upcoming", s.followupH.Upcoming)
	mux.HandleFunc("POST /api/followups/{id}/complete", s.followupH.Complete)
	mux.HandleFunc("DELETE /api/followups/{id}", s.followupH.Delete)
	mux.HandleFunc("GET /api/leads/{id}/followups", s.followupH.ListForLead)

	// Push subscription routes
	mux.HandleFunc("GET /api/push/key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscriptions", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)

	// Live updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
