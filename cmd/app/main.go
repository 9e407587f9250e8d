package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"energy_go/internal/app"
	"energy_go/internal/engine"
	"energy_go/internal/event"
	"energy_go/internal/infra/ws"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config
	market := bootstrap.Market

	// 4. Notification feed (websocket hub for dashboards/indexers)
	hub := ws.NewHub()
	defer hub.Close()

	feedSrv := &http.Server{Addr: cfg.Feed.ListenAddr, Handler: hub}
	go func() {
		slog.Info("✅ Notification feed listening", slog.String("addr", cfg.Feed.ListenAddr))
		if err := feedSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Feed server failed", slog.Any("error", err))
		}
	}()
	defer feedSrv.Close()

	// 5. Dispatcher resumes after the last journaled notification
	event.Warmup()
	dispatcher := engine.NewDispatcher(cfg.Feed.InboxSize, market.LastEventSeq()+1, hub)
	go dispatcher.Run(ctx)
	market.SetOutbox(dispatcher.Inbox())
	slog.InfoContext(ctx, "✅ Notification dispatcher started")

	slog.InfoContext(ctx, "✨ Energy marketplace core fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
