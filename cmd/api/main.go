// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/poschuler/remix-local-auth/internal/auth"
	"github.com/poschuler/remix-local-auth/internal/config"
	"github.com/poschuler/remix-local-auth/internal/database"
	"github.com/poschuler/remix-local-auth/internal/logging"
	"github.com/poschuler/remix-local-auth/internal/metrics"
	"github.com/poschuler/remix-local-auth/internal/password"
	"github.com/poschuler/remix-local-auth/internal/session"
	"github.com/poschuler/remix-local-auth/internal/users"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 設定の読み込み（必須の値が無ければここで終了する）
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel)

	// セッションストアの設定（署名鍵は必須）
	store, err := session.New(session.Config{
		Secrets:    cfg.SessionSecrets,
		Production: cfg.IsProduction(),
		Domain:     cfg.CookieDomain,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// コネクションプールはプロセスで一つだけ作り、終了時に閉じる
	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db.Pool()); err != nil {
			return err
		}
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	tmpl, err := auth.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	m := metrics.New()

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(gin.Recovery(), logging.RequestLogger(logger), m.Middleware())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// 通知用の一時セッション
	router.Use(store.FlashMiddleware())

	hasher := password.NewHasher(password.Params{
		MemoryKiB:   cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	})
	service := users.NewService(users.NewPostgresRepository(db), hasher)
	handler := auth.NewHandler(service, store, auth.NewGuard(store), m, logger)

	// ルーティングの設定
	setupRoutes(router, handler, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "local-auth",
		"version": "0.1.0",
	})
}

// setupRoutes は画面とヘルスチェック・メトリクスの配線を行います。
func setupRoutes(router *gin.Engine, handler *auth.Handler, m *metrics.Metrics) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	handler.Register(router)
	router.NoRoute(handler.NotFound)
}
