package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/database"
	"github.com/jgrady/homekeep/internal/logging"
	"github.com/jgrady/homekeep/internal/server"
)

func main() {
	port := os.Getenv("HOMEKEEP_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HOMEKEEP_DB_PATH")
	if dbPath == "" {
		dbPath = "homekeep.db"
	}

	logger := logging.Setup(os.Getenv("HOMEKEEP_LOG_LEVEL"))

	secret := []byte(os.Getenv("HOMEKEEP_JWT_SECRET"))
	if len(secret) == 0 {
		// Sessions signed with an ephemeral secret die with the process.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("failed to generate session secret: %v", err)
		}
		logger.Warn("HOMEKEEP_JWT_SECRET not set, sessions will not survive restarts")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, auth.NewTokenIssuer(secret), logger)

	// Expired rate-limit windows accumulate between login bursts.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
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
		fmt.Printf("Homekeep running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
