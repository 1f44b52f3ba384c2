package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/api"
	"bookshelf/internal/feed"
	"bookshelf/internal/grpcserver"
	"bookshelf/pkg/database"
	"bookshelf/pkg/utils"
)

func main() {
	logger := utils.NewLogger(utils.LoadLogConfig(), os.Stderr)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	authCfg := utils.LoadAuthConfig()
	srvCfg := utils.LoadServerConfig()
	if authCfg.JWTSecret == utils.DefaultJWTSecret {
		logger.Warn("using the built-in JWT secret; set BOOKSHELF_JWT_SECRET")
	}

	// The store connects on first use and is shared by every request.
	store := database.NewHandle(database.DefaultConfig())
	defer store.Close()

	hub := feed.NewHub()
	defer hub.Close()
	router := api.NewRouter(api.Deps{
		Store:  store,
		Hub:    hub,
		Auth:   authCfg,
		Server: srvCfg,
		Logger: logger,
	})

	httpSrv := &http.Server{
		Addr:              srvCfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	var tcpSrv *feed.Server
	if srvCfg.FeedAddr != "" {
		tcpSrv = feed.NewServer(srvCfg.FeedAddr, hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	var healthSrv *grpcserver.Server
	if srvCfg.GRPCAddr != "" {
		healthSrv = grpcserver.NewServer(store)
		healthSrv.Logger = logger
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := healthSrv.ListenAndServe(srvCfg.GRPCAddr); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening",
			"addr", srvCfg.HTTPAddr,
			"db", store.Path(),
			"auth_required", authCfg.Required,
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	logger.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Error("tcp shutdown error", "err", err)
		}
	}

	if healthSrv != nil {
		healthSrv.Stop()
	}

	wg.Wait()
	logger.Info("servers stopped")
}
