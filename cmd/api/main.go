package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/harentsoaR/healthref-api/internal/config"
	"github.com/harentsoaR/healthref-api/internal/handlers"
	"github.com/harentsoaR/healthref-api/internal/middleware"
	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/repository"
	"github.com/harentsoaR/healthref-api/internal/services"
	"github.com/harentsoaR/healthref-api/internal/utils"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if envErr != nil {
		sugar.Info("no .env file found, relying on environment variables")
	}
	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("configuration error", "error", err)
	}

	if err := run(cfg, logger); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	sugar.Infow("connected to MongoDB", "database", cfg.MongoDatabase)

	rdb := connectRedis(ctx, cfg, sugar)
	if rdb != nil {
		defer rdb.Close()
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	sender, err := otpSender(cfg, logger)
	if err != nil {
		return err
	}
	uploader, err := newUploader(cfg)
	if err != nil {
		return err
	}

	// Stores.
	customers := repository.NewMemberRepository(db, models.Customer)
	affiliates := repository.NewMemberRepository(db, models.Affiliate)
	doctors := repository.NewDoctorRepository(db)
	bookings := repository.NewBookingRepository(db)
	details := repository.NewAccountDetailsRepository(db)
	cities := repository.NewCities(db)
	treatments := repository.NewTreatments(db)
	conditions := repository.NewConditions(db)
	hospitals := repository.NewHospitals(db)
	banners := repository.NewBanners(db)

	// Services.
	registry := services.NewRegistry(customers, doctors, affiliates)
	notifier := services.NewNotificationService(sender, logger)
	limiter := services.NewAttemptLimiter(rdb, cfg.OTPMaxAttempts, time.Hour)
	memberDeps := func(store services.MemberStore) services.MemberDeps {
		return services.MemberDeps{
			Members:   store,
			Customers: customers,
			Cities:    cities,
			Bookings:  bookings,
			Registry:  registry,
			Tokens:    tokens,
			Notifier:  notifier,
			Limiter:   limiter,
			OTPTTL:    cfg.OTPTTL,
			Log:       logger,
		}
	}

	rl := middleware.NewRateLimiter()
	for _, p := range []string{
		"/api/user/send-otp", "/api/user/verify-otp",
		"/api/partner/send-otp", "/api/partner/verify-otp",
		"/api/doctor/login",
	} {
		rl.Route(p, rate.Every(2*time.Second), 5)
	}

	deps := handlers.Deps{
		Users:          services.NewMemberService(models.Customer, memberDeps(customers)),
		Partners:       services.NewMemberService(models.Affiliate, memberDeps(affiliates)),
		Doctors:        services.NewDoctorService(doctors, hospitals, customers, registry, tokens),
		Bookings:       services.NewBookingService(bookings, conditions, cities, doctors, registry, logger),
		Commission:     services.NewLedger(registry),
		AccountDetails: services.NewAccountDetailsService(details, registry),
		Search:         services.NewSearchService(doctors, hospitals, conditions),

		Cities:     services.NewCatalogService[models.City](cities, "City"),
		Treatments: services.NewCatalogService[models.Treatment](treatments, "Treatment"),
		Conditions: services.NewCatalogService[models.Condition](conditions, "Condition").
			WithCheck(services.RefCheck("treatments", "treatment", treatments)),
		Hospitals: services.NewCatalogService[models.Hospital](hospitals, "Hospital").
			WithCheck(services.RefCheck("conditions", "condition", conditions)),
		Banners: services.NewCatalogService[models.Banner](banners, "Banner"),

		Uploader:    uploader,
		Tokens:      tokens,
		RateLimiter: rl,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}
	if !cfg.UseS3() {
		deps.UploadDir = cfg.UploadDir
	}

	router, err := handlers.NewHandler(deps).SetupRouter()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rl.Cleanup(ctx, 10*time.Minute)
	})

	g.Go(func() error {
		sugar.Infow("starting server", "addr", cfg.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// connectRedis returns nil when Redis is not configured or unreachable;
// OTP attempt limiting is then disabled.
func connectRedis(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		sugar.Warnw("redis unavailable, OTP attempt limiting disabled", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return nil
	}
	sugar.Infow("connected to Redis", "addr", cfg.RedisAddr)
	return rdb
}

func otpSender(cfg *config.Config, logger *zap.Logger) (services.OTPSender, error) {
	switch cfg.OTPChannel {
	case "console":
		return services.NewConsoleSender(logger), nil
	case "whatsapp":
		return services.NewWhatsAppSender(cfg.WAChatAPI, cfg.WAChatToken), nil
	case "email":
		return services.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPSender), nil
	default:
		return nil, fmt.Errorf("unknown OTP channel %q", cfg.OTPChannel)
	}
}

func newUploader(cfg *config.Config) (services.Uploader, error) {
	if cfg.UseS3() {
		return services.NewS3Uploader(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSBucketName)
	}
	return services.NewLocalUploader(cfg.UploadDir, "/uploads"), nil
}
