package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chatzone/internal/ai"
	"github.com/chatzone/internal/call"
	"github.com/chatzone/internal/config"
	"github.com/chatzone/internal/handler"
	"github.com/chatzone/internal/logger"
	"github.com/chatzone/internal/middleware"
	"github.com/chatzone/internal/seed"
	"github.com/chatzone/internal/store"
	"github.com/chatzone/internal/ws"
)

func main() {
	logger.SetPrefix("api")
	logger.Info("starting chat service")
	cfg := config.Load()

	aiClient := ai.New(cfg.AI)
	if !aiClient.Enabled() {
		logger.Info("no Gemini API key configured, AI chat answers with the fallback text")
	}

	hub := ws.NewHub(ws.Options{
		MaxConnections: cfg.MaxWSConnections,
		SendBufferSize: cfg.WSSendBufferSize,
		WriteTimeout:   cfg.WSWriteTimeout,
		PongTimeout:    cfg.WSPongTimeout,
		MaxMessageSize: cfg.WSMaxMessageSize,
	})
	hubCtx, hubCancel := context.WithCancel(context.Background())
	var hubWg sync.WaitGroup
	hubWg.Add(1)
	go func() {
		defer hubWg.Done()
		hub.Run(hubCtx)
	}()

	sd := seed.Load()
	st := store.New(sd, aiClient, hub)
	logger.Infof("seeded %d users and %d chats", len(sd.Users), len(sd.Chats))

	calls := call.NewManager(st, hub)
	// Demo: Alice rings shortly after startup.
	calls.ScheduleRing("chat-1", "user-2", cfg.IncomingCallDelay)

	userH := handler.NewUserHandler(st)
	chatH := handler.NewChatHandler(st)
	msgH := handler.NewMessageHandler(st)
	callH := handler.NewCallHandler(calls)
	configH := handler.NewConfigHandler(handler.AIInfo{Enabled: aiClient.Enabled(), Model: aiClient.Model()})
	wsH := handler.NewWSHandler(hub, st, cfg.CORSAllowedOrigins)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RecoverJSON)
	// Never compress WebSocket upgrades: the wrapped ResponseWriter would
	// lose http.Hijacker and the upgrade would 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			chimw.Compress(5)(next).ServeHTTP(w, req)
		})
	})
	r.Use(middleware.RequestLog)
	r.Use(middleware.RateLimitAPI)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); w.Write([]byte("ok")) })
	r.Get("/api/config", configH.GetConfig)

	r.Get("/api/users/me", userH.GetProfile)
	r.Put("/api/users/me", userH.UpdateProfile)
	r.Get("/api/users", userH.GetContacts)

	r.Get("/api/chats", chatH.GetChats)
	r.Post("/api/chats", chatH.CreateChat)
	r.Get("/api/chats/{chatId}", chatH.GetChat)
	r.Post("/api/chats/{chatId}/select", chatH.SelectChat)
	r.Get("/api/chats/{chatId}/messages", msgH.GetMessages)
	r.Post("/api/chats/{chatId}/messages", msgH.SendMessage)
	r.Get("/api/chats/{chatId}/messages/{messageId}/reactions", msgH.GetReactions)
	r.Post("/api/chats/{chatId}/messages/{messageId}/reactions", msgH.ToggleReaction)

	r.Post("/api/chats/{chatId}/call", callH.StartCall)
	r.Post("/api/calls/{callId}/accept", callH.AcceptCall)
	r.Post("/api/calls/{callId}/decline", callH.DeclineCall)
	r.Post("/api/calls/{callId}/end", callH.EndCall)

	r.Get("/ws", wsH.ServeWS)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")

	// Give in-flight AI legs a moment to land; there is no cancellation
	// once a prompt is dispatched, so a hung collaborator is abandoned.
	drained := make(chan struct{})
	go func() {
		st.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		logger.Error("pending AI replies not drained, abandoning")
	}

	hubCancel()
	hubWg.Wait()
	logger.Info("hub stopped")
	srvWg.Wait()
	logger.Info("server goroutine exited")
}
