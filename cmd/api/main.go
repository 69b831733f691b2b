package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatdawah/rag-chatbot/internal/chatbot"
	"github.com/chatdawah/rag-chatbot/internal/config"
	"github.com/chatdawah/rag-chatbot/internal/embed"
	apphttp "github.com/chatdawah/rag-chatbot/internal/http"
	"github.com/chatdawah/rag-chatbot/internal/llm"
	"github.com/chatdawah/rag-chatbot/internal/vector"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	provider, err := llm.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init LLM provider: %v", err)
	}

	embedder, err := embed.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init embedding client: %v", err)
	}

	store, err := vector.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init vector store: %v", err)
	}
	defer store.Close()

	svc := chatbot.NewService(cfg, provider, embedder, store)

	// Initialization runs alongside the server; /health reports
	// chatbot_ready=false and queries get 503 until it completes.
	go func() {
		if err := svc.Initialize(ctx); err != nil {
			log.Printf("initialization failed: %v", err)
		}
	}()

	h := apphttp.NewHandler(svc, cfg)
	handler := corsMiddleware(cfg.CORSOrigins, apphttp.NewRouter(h))

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		log.Printf("%s v%s listening on %s (provider=%s, store=%s)",
			cfg.AppName, cfg.AppVersion, addr, cfg.LLMProvider, cfg.VectorBackend)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
}

func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
