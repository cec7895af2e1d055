package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rusq/dlog"
	"golang.org/x/sync/errgroup"

	"discordclear/internal/cleaner"
	"discordclear/internal/config"
	"discordclear/internal/discord"
	"discordclear/internal/handler"
	"discordclear/internal/notifier"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		dlog.Printf("⚠️  .env file not found, using default values: %v", err)
	}

	// 環境変数を読み込み
	cfg, err := config.Load()
	if err != nil {
		dlog.Fatalf("❌ Failed to load configuration: %v", err)
	}
	dlog.SetDebug(cfg.LogDebug)

	// 購読者は常に1つだけ
	n := notifier.New()
	c := cleaner.New(discord.NewConnector(), n)

	// ハンドラー初期化
	h := handler.New(cfg, n, c)
	router := h.SetupRouter()

	// CORS対応
	corsOpts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: !cfg.AllowsAnyOrigin(),
	}
	httpHandler := cors.New(corsOpts).Handler(router)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: httpHandler,
	}

	fmt.Println("========================================")
	fmt.Println("  Discord Message Cleaner API")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv, cfg); err != nil {
		dlog.Fatalf("❌ Server stopped: %v", err)
	}
	dlog.Printf("👋 Server stopped gracefully")
}

func run(ctx context.Context, srv *http.Server, cfg config.Config) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dlog.Printf("🚀 Server started on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		dlog.Printf("Shutdown signal received, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
