package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/config"
	custommiddleware "github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/middleware"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/service"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client

	authService service.AuthService
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))

	// Global rate limit, keyed by user or IP
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.GlobalPerMinute,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:global",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Uploaded images are served as plain static files
	fileServer := http.StripPrefix(cfg.Upload.BaseURL, http.FileServer(http.Dir(cfg.Upload.Dir)))
	router.Get(cfg.Upload.BaseURL+"/*", fileServer.ServeHTTP)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewAPITokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	cartItemRepo := repository.NewCartItemRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	attemptStore := service.NewRedisAttemptStore(redisClient, "login:attempts")
	authService := service.NewAuthService(
		userRepo,
		tokenRepo,
		attemptStore,
		time.Duration(cfg.Auth.TokenExpiryHours)*time.Hour,
		cfg.Auth.LoginMaxAttempts,
		time.Duration(cfg.Auth.LoginWindowSeconds)*time.Second,
		logger,
	)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(cartRepo, cartItemRepo, productRepo, logger)
	orderService := service.NewOrderService(
		txManager,
		orderRepo,
		orderItemRepo,
		productRepo,
		paymentRepo,
		cartRepo,
		cartItemRepo,
		logger,
	)
	imageService := service.NewImageService(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxBytes, logger)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	userHandler := transport.NewUserHandler(userRepo, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	orderItemHandler := transport.NewOrderItemHandler(orderItemRepo, orderRepo, logger)
	paymentHandler := transport.NewPaymentHandler(paymentRepo, logger)
	addressHandler := transport.NewAddressHandler(addressRepo, logger)
	reviewHandler := transport.NewReviewHandler(reviewRepo, logger)
	imageHandler := transport.NewImageHandler(imageService, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(authService, logger)
	managerOnly := custommiddleware.RequireManager(logger)

	// Login and registration get a tighter rate limit than the rest of
	// the API
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.AuthPerMinute,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:auth",
		}, logger))
		authHandler.RegisterRoutes(r, authMiddleware)
	})

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	productHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	categoryHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	cartHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	orderItemHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	paymentHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	addressHandler.RegisterRoutes(router, authMiddleware)
	reviewHandler.RegisterRoutes(router, authMiddleware)
	imageHandler.RegisterRoutes(router, authMiddleware, managerOnly)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		authService: authService,
	}

	return server
}

// AuthService exposes the auth service so the process can run the
// periodic token sweep.
func (s *Server) AuthService() service.AuthService {
	return s.authService
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
