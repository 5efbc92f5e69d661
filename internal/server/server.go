package server

import (
	"fmt"
	"net/http"
	"time"

	"pycsa-web/internal/auth"
	"pycsa-web/internal/baas"
	"pycsa-web/internal/config"
	"pycsa-web/internal/mailer"
	"pycsa-web/internal/media"
	custommiddleware "pycsa-web/internal/middleware"
	"pycsa-web/internal/repository"
	"pycsa-web/internal/service"
	"pycsa-web/internal/transport"
	"pycsa-web/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the external clients the server is built on.
type Deps struct {
	BaaS   *baas.Client
	Images media.Manager
	Mailer mailer.Sender
	Redis  *redis.Client // nil disables rate limiting
}

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	redis       *redis.Client
	unsubscribe func()
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) (*Server, error) {
	views, err := web.NewRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := custommiddleware.NewMetrics(registry)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Handle("/static/*", middleware.SetHeader("Cache-Control", "public, max-age=3600")(web.Static()))

	// Initialize repositories
	productRepo := repository.NewProductRepository(deps.BaaS)
	serviceRepo := repository.NewServiceRepository(deps.BaaS)
	blogRepo := repository.NewBlogRepository(deps.BaaS)
	commentRepo := repository.NewCommentRepository(deps.BaaS)
	zoneRepo := repository.NewDeliveryZoneRepository(deps.BaaS)

	// Initialize services
	productService := service.NewProductService(productRepo, deps.Images, logger)
	offeringService := service.NewOfferingService(serviceRepo, deps.Images, logger)
	blogService := service.NewBlogService(blogRepo, commentRepo, deps.Images, logger)
	zoneService := service.NewDeliveryZoneService(zoneRepo)
	messageService := service.NewMessageService(deps.Mailer, cfg.Email.ContactTemplate, cfg.Email.QuoteTemplate, logger)

	// Admin sessions
	sessions := auth.NewManager(
		auth.NewCookieStore(cfg.Session.Secret, cfg.Session.Secure, cfg.Session.MaxAge),
		deps.BaaS,
		cfg.Supabase.JWTSecret,
		logger,
	)
	unsubscribe := sessions.Subscribe(func(e auth.Event, id *auth.Identity) {
		if id == nil {
			logger.Info("Auth state changed", zap.Stringer("event", e))
			return
		}
		logger.Info("Auth state changed", zap.Stringer("event", e), zap.String("email", id.Email))
	})

	limit := custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:submit",
	}, logger)

	// Initialize handlers
	siteHandler := transport.NewSiteHandler(offeringService, productService, blogService, messageService, views, metrics, logger)
	adminHandler := transport.NewAdminHandler(productService, offeringService, blogService, zoneService, sessions, views, logger)
	contentHandler := transport.NewContentHandler(offeringService, productService, blogService, zoneService, metrics, logger)

	// Register routes
	siteHandler.RegisterRoutes(router, limit)
	adminHandler.RegisterRoutes(router, custommiddleware.RequireSession(sessions, logger))
	router.Route("/api", func(r chi.Router) {
		r.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			custommiddleware.RespondWithError(w, http.StatusNotFound, "resource not found")
		})
		contentHandler.RegisterRoutes(r, limit)
	})
	router.NotFound(siteHandler.NotFound)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		redis:       deps.Redis,
		unsubscribe: unsubscribe,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.unsubscribe()

	// Close redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
