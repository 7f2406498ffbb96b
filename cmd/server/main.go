// Package main - Entry point for the SiteMate estimation server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "sitemate/adapters/http"
	"sitemate/internal/app"
	"sitemate/internal/config"
	"sitemate/internal/logging"
)

func main() {
	addr := flag.String("addr", "", "Server address (default from config)")
	cfgPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "dotenv file with API keys")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatal(err)
	}
	defer logging.Sync()

	a, err := app.New(cfg, logging.Logger)
	if err != nil {
		logging.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	server := a.HTTP()

	fmt.Printf("SiteMate Estimation Server v%s\n", httpadapter.Version)
	fmt.Printf("   API: http://localhost%s/api/v1\n", cfg.Server.Address)
	fmt.Printf("   Pricing: %s | Storage: %s\n", cfg.Pricing.Mode, cfg.Storage.Backend)
	fmt.Println()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server stopped", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("shutdown failed", zap.Error(err))
	}
}
