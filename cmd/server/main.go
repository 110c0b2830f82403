// Command server runs the SecureVault backend: the security-method engine,
// the vault item store, and the mail endpoints behind one HTTP listener.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Binduvarsha23/securevaultBackend/internal/config"
	"github.com/Binduvarsha23/securevaultBackend/internal/hash"
	"github.com/Binduvarsha23/securevaultBackend/internal/httpapi"
	"github.com/Binduvarsha23/securevaultBackend/internal/notify"
	"github.com/Binduvarsha23/securevaultBackend/internal/security"
	"github.com/Binduvarsha23/securevaultBackend/internal/vault"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		logger.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	sender := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	engine := security.NewEngine(
		security.NewStore(rdb, cfg.KeyPrefix),
		hash.NewBcrypt(bcrypt.DefaultCost),
		sender,
		security.Options{
			TOTP:          security.TOTPConfig{Issuer: cfg.TOTPIssuer},
			ResetTokenTTL: cfg.ResetTokenTTL,
		},
	)
	vaults := vault.NewStore(rdb, cfg.KeyPrefix)

	handler := httpapi.NewRouter(engine, vaults, sender, logger, httpapi.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	_ = rdb.Close()
}
