package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	sessioncontext "stocksence/frontend/shared/context"
	"stocksence/frontend/shared/respond"
	"stocksence/infrastructure/metrics"
	"stocksence/infrastructure/rbac"
	sessioncookie "stocksence/infrastructure/session"
	"stocksence/models"
	"stocksence/store"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Store         *store.Store
	Signer        *sessioncookie.Signer
	Rbac          *rbac.Rbac
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	SecureCookies bool
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	Store         *store.Store
	Signer        *sessioncookie.Signer
	Rbac          *rbac.Rbac
	Metrics       *metrics.Metrics
	Log           *zap.Logger
	SecureCookies bool
}

// NewServer creates a new http server.
func NewServer(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Rbac == nil {
		d.Rbac = rbac.New()
	}
	s := &Server{
		Addr:          addr,
		router:        chi.NewRouter(),
		Store:         d.Store,
		Signer:        d.Signer,
		Rbac:          d.Rbac,
		Metrics:       d.Metrics,
		Log:           d.Logger.Named("http"),
		SecureCookies: d.SecureCookies,
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(s.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.resolveSession(r); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", s.Metrics.Handler())

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		s.Log.Error("assets subfs init failed; serving fallback fs", zap.Error(err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Group(func(r chi.Router) {
		r.Use(s.AuthenticatePageMiddleware)
		s.RegisterPageRoutes(r)
	})
	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterFrontendRoutes(r)
		s.RegisterAdminRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AuthenticateMiddleware resolves the session cookie for API routes and
// applies RBAC checks.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.resolveSession(r)
		if !ok {
			http.SetCookie(w, sessioncookie.ClearCookie(s.SecureCookies))
			respond.Error(w, r, store.ErrNotAuthenticated)
			return
		}
		if !s.Rbac.Allowed(session.Role, r.URL.Path, r.Method) {
			s.Log.Warn("rbac denied",
				zap.String("user_id", session.UserID),
				zap.String("role", session.Role),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			respond.Error(w, r, store.ErrForbidden)
			return
		}
		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticatePageMiddleware sends anonymous browsers to the login screen.
func (s *Server) AuthenticatePageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.resolveSession(r)
		if !ok {
			http.SetCookie(w, sessioncookie.ClearCookie(s.SecureCookies))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveSession(r *http.Request) (models.Session, bool) {
	cookie, err := r.Cookie(sessioncookie.CookieName)
	if err != nil || cookie.Value == "" {
		return models.Session{}, false
	}
	token, err := s.Signer.Parse(cookie.Value)
	if err != nil {
		s.Log.Debug("session cookie rejected", zap.Error(err))
		return models.Session{}, false
	}
	session, err := s.Store.Authorize(r.Context(), token)
	if err != nil {
		return models.Session{}, false
	}
	return session, true
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("http server stopped", zap.Error(err))
		}
	}()
	s.Log.Info("http server listening", zap.String("addr", s.ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
