package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/storage"
	appweb "fintrack/web"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Options configures the HTTP server.
type Options struct {
	Addr                  string
	CORSAllowedOrigins    []string
	AuthRequestsPerMinute int
}

// Server wires the JSON API, the embedded frontend and the middleware stack
// around the entity store.
type Server struct {
	http.Server
	store        *storage.Store
	tokens       *auth.TokenManager
	limiter      *ratelimit.Limiter
	users        *cache.LRU[core.User]
	index        []byte
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options, store *storage.Store, tokens *auth.TokenManager) *Server {
	s := &Server{
		store:  store,
		tokens: tokens,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.AuthRequestsPerMinute,
		}),
		// Identity lookups hit on every API request; a short TTL keeps
		// them off the database without holding deleted users for long.
		users: cache.NewLRU[core.User](1024, time.Minute),
	}

	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	// Credential endpoints are rate limited per client IP to slow down
	// brute forcing.
	authLimited := s.limiter.Middleware(clientIP, limitExceeded)
	r.Handle("/register", authLimited(http.HandlerFunc(s.handleRegister))).Methods(http.MethodPost)
	r.Handle("/login", authLimited(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireUser)
	api.HandleFunc("/data", s.handleData).Methods(http.MethodGet)
	api.HandleFunc("/account", s.handleDeleteAccount).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.handleUpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", s.handleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{id}", s.handleUpdateGoal).Methods(http.MethodPut)
	api.HandleFunc("/goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, req)
		}))

		if index, err := fs.ReadFile(sub, "index.html"); err == nil {
			s.index = index
		} else {
			slog.Warn("Embedded index.html missing", "error", err)
		}
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	traceMW := trace.NewMiddleware(clientIP)
	corsMW := cors.New(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-User-ID"},
	})
	secMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: traceMW.Middleware(corsMW.Handler(secMW.Middleware(r))),
	}
	return s
}

// Shutdown stops the rate limiter cleanup goroutine and shuts down the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if len(s.index) == 0 {
		writeError(w, http.StatusInternalServerError, "frontend not available")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.index)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.GetUserByID(r.Context(), 0); err != nil && err != storage.ErrNotFound {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "Rate limit exceeded",
		"client_ip", clientIP(r), "path", r.URL.Path)
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
