package httpapi

import (
	"net/http"
	"time"

	"teklip/marketplace/internal/auth"
	"teklip/marketplace/internal/config"
	"teklip/marketplace/internal/metrics"
	"teklip/marketplace/internal/post"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Config   config.Config
	Auth     *auth.Service
	Tokens   *auth.TokenIssuer
	Posts    *post.Service
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

type Server struct {
	cfg      config.Config
	auth     *auth.Service
	tokens   *auth.TokenIssuer
	posts    *post.Service
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	log      *zap.Logger
	router   chi.Router
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:      d.Config,
		auth:     d.Auth,
		tokens:   d.Tokens,
		posts:    d.Posts,
		metrics:  d.Metrics,
		gatherer: gatherer,
		log:      log.Named("http"),
		router:   chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	r := s.router

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(echoRequestID)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/auth", func(r chi.Router) {
		if s.cfg.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(s.cfg.RateLimitPerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusTooManyRequests, "too_many_requests", "too many requests")
				}),
			))
		}

		r.Post("/register", s.handleRegister)
		r.Post("/verify-email", s.handleVerifyEmail)
		r.Post("/resend-verification-email", s.handleResendVerification)
		r.Post("/login", s.handleLogin)
		r.With(s.requireToken(auth.AccessToken)).Get("/user", s.handleCurrentUser)
		r.With(s.requireToken(auth.RefreshToken)).Post("/refresh", s.handleRefresh)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/forgot-password/check-code", s.handleCheckResetCode)
		r.Post("/forgot-password/reset", s.handleResetPassword)
	})

	r.Route("/posts", func(r chi.Router) {
		r.With(s.optionalToken).Get("/", s.handlePostsList)
		r.With(s.requireToken(auth.AccessToken)).Post("/", s.handlePostCreate)
		r.With(s.requireToken(auth.AccessToken)).Get("/mine", s.handlePostsMine)
		r.With(s.streamToken).Get("/stream", s.handleStream)
		r.With(s.optionalToken).Get("/{id}", s.handlePostGet)
		r.With(s.requireToken(auth.AccessToken)).Put("/{id}", s.handlePostUpdate)
		r.With(s.requireToken(auth.AccessToken)).Delete("/{id}", s.handlePostDelete)
		r.With(s.requireToken(auth.AccessToken)).Post("/{id}/moderation", s.handlePostModerate)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
