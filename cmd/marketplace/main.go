package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teklip/marketplace/internal/auth"
	"teklip/marketplace/internal/config"
	"teklip/marketplace/internal/httpapi"
	"teklip/marketplace/internal/logging"
	"teklip/marketplace/internal/mail"
	"teklip/marketplace/internal/metrics"
	"teklip/marketplace/internal/post"
	"teklip/marketplace/internal/ratelimit"
	"teklip/marketplace/internal/store"
	"teklip/marketplace/internal/store/memory"
	"teklip/marketplace/internal/store/mongo"
	"teklip/marketplace/internal/store/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logging.Init(logging.ConfigFromEnv())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Warn("generating ephemeral JWT secrets; tokens will not survive a restart", zap.Error(err))
		if cfg.JWTAccessSecret == "" {
			cfg.JWTAccessSecret = randomSecret()
		}
		if cfg.JWTRefreshSecret == "" {
			cfg.JWTRefreshSecret = randomSecret()
		}
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	st, closeStore, err := openStore(rootCtx, cfg, log)
	if err != nil {
		log.Fatal("failed to init store", zap.Error(err))
	}
	defer closeStore()

	policy := ratelimit.Policy{
		Cooldown: cfg.CodeResendCooldown,
		Window:   cfg.CodeWindow,
		Max:      cfg.CodeWindowMax,
	}
	var limiter ratelimit.Limiter
	var pruners []auth.Pruner
	switch {
	case !policy.Enabled():
		log.Info("code limiter disabled")
	case cfg.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = rdb.Close() }()
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to reach redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		limiter = ratelimit.NewRedisLimiter(rdb, policy)
		log.Info("using redis code limiter", zap.String("addr", cfg.RedisAddr))
	default:
		ml := ratelimit.NewMemoryLimiter(policy)
		limiter = ml
		pruners = append(pruners, ml)
		log.Info("using memory code limiter")
	}

	var mailer mail.Notifier
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPNotifier(cfg.Mail, log)
		log.Info("using smtp mailer", zap.String("host", cfg.Mail.SMTPHost), zap.Bool("oauth", cfg.Mail.UsesOAuth()))
	} else {
		mailer = mail.NewLogNotifier(log)
		log.Warn("SMTP_HOST not set; verification codes are only logged")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := auth.NewTokenIssuer(cfg.JWTAccessSecret, cfg.JWTAccessTTL, cfg.JWTRefreshSecret, cfg.JWTRefreshTTL)

	authSvc := auth.NewService(auth.Deps{
		Users:      st,
		Codes:      st,
		Hasher:     auth.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     tokens,
		Mailer:     mailer,
		Limiter:    limiter,
		Metrics:    m,
		Log:        log,
		CodeExpiry: cfg.AuthCodeExpiry,
	})
	posts := post.NewService(st, post.NewBus(), cfg.ModeratorEmails, m, log)

	sweeper := auth.NewSweeper(st, cfg.AuthCodeSweepInterval, m, log, pruners...)
	go sweeper.Run(rootCtx)

	srv := httpapi.NewServer(httpapi.Deps{
		Config:   cfg,
		Auth:     authSvc,
		Tokens:   tokens,
		Posts:    posts,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Log:      log,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("marketplace listening", zap.String("addr", cfg.ListenAddr()))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
	}

	cancelRoot()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}

// openStore picks mongo, then postgres, then the in-memory store.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case cfg.MongoURI != "":
		ms, err := mongo.NewStore(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			ms.Close()
			return nil, nil, err
		}
		log.Info("using mongo store", zap.String("database", cfg.MongoDatabase))
		return ms, ms.Close, nil
	case cfg.DatabaseURL != "":
		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		log.Info("using postgres store")
		return pg, pg.Close, nil
	default:
		log.Info("using memory store")
		return memory.NewStore(), func() {}, nil
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
