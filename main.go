package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"unimarket/internal/handler"
	"unimarket/internal/repository/sqlite"
	"unimarket/internal/service"
	"unimarket/internal/ws"
)

func main() {
	// Local development reads a .env file; production sets real env.
	godotenv.Load()

	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, logOpts)))

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "unimarket.db")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		slog.Error("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	bcryptCost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BCRYPT_COST", "error", err)
			os.Exit(1)
		}
		if parsed < 4 || parsed > 14 {
			slog.Error("BCRYPT_COST must be between 4 and 14", "value", parsed)
			os.Exit(1)
		}
		bcryptCost = parsed
	}

	tokenTTL := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			slog.Error("invalid TOKEN_TTL_HOURS", "value", v)
			os.Exit(1)
		}
		tokenTTL = time.Duration(hours) * time.Hour
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), jwtSecret, bcryptCost, tokenTTL)
	imageService := service.NewImageService(db.FileStore(), db.Users())
	listingService := service.NewListingService(db.Listings(), imageService)
	wishlistService := service.NewWishlistService(db.Wishlist())
	transactionService := service.NewTransactionService(db.Transactions())
	adminService := service.NewAdminService(db.Users(), db.Stats())

	hub := ws.NewHub()
	go hub.Run()
	messageService := service.NewMessageService(db.Messages(), hub)

	// Credential endpoints share one counter store; pointing every
	// instance at the same Redis keeps the limit global.
	var counters service.CounterStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("failed to connect to redis", "addr", addr, "error", err)
			os.Exit(1)
		}
		counters = service.NewRedisCounterStore(client)
		slog.Info("rate limit counters in redis", "addr", addr)
	} else {
		counters = service.NewMemoryCounterStore()
	}

	authLimit := int64(10)
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			slog.Error("invalid AUTH_RATE_LIMIT", "value", v)
			os.Exit(1)
		}
		authLimit = parsed
	}
	authLimiter := service.NewFixedWindowLimiter(counters, authLimit, time.Minute)

	// Seed the admin account (idempotent).
	if err := authService.EnsureAdmin(context.Background(), os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		slog.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:         authService,
		Listings:     listingService,
		Messages:     messageService,
		Wishlist:     wishlistService,
		Transactions: transactionService,
		Images:       imageService,
		Admin:        adminService,
		Hub:          hub,
		AuthLimiter:  authLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(handler.RequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
