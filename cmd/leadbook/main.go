package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paragonmech/leadbook/internal/database"
	"github.com/paragonmech/leadbook/internal/logging"
	"github.com/paragonmech/leadbook/internal/notify"
	"github.com/paragonmech/leadbook/internal/server"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "vapid-keys" {
		pub, priv, err := notify.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("failed to generate VAPID keys: %v", err)
		}
		fmt.Printf("LEADBOOK_VAPID_PUBLIC_KEY=%s\nLEADBOOK_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	port := os.Getenv("LEADBOOK_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("LEADBOOK_DB_PATH")
	if dbPath == "" {
		dbPath = "leadbook.db"
	}

	logger := logging.Setup(os.Getenv("LEADBOOK_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		IDTokenSecret:   os.Getenv("LEADBOOK_ID_TOKEN_SECRET"),
		VAPIDPublicKey:  os.Getenv("LEADBOOK_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("LEADBOOK_VAPID_PRIVATE_KEY"),
		SecureCookie:    os.Getenv("LEADBOOK_SECURE_COOKIES") == "true",
	}

	srv := server.New(db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sched := srv.Scheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		logger.Warn("VAPID keys not configured, follow-up reminders disabled")
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("leadbook listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
