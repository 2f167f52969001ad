package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lovable-tutor/internal/app"
	"lovable-tutor/internal/config"
	"lovable-tutor/internal/httpapi"
	"lovable-tutor/internal/mcptools"
	"lovable-tutor/internal/scheduler"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}
	defer a.Close()

	sched := scheduler.New(cfg.RolloverCron)
	sched.SetRolloverFunction(scheduler.RolloverJob(a.Progress, nil))
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	api := httpapi.NewServer(a.Progress, a.Session)
	defer api.Close()
	router := api.Router()

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: "lovable-tutor", Version: "1.0.0"}, nil)
	mcptools.Register(mcpServer, a.Progress, a.Session)
	router.Any("/mcp", gin.WrapH(mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return mcpServer })))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("🌐 Tutor API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🔌 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
	}
}
