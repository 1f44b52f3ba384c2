// Package api wires the feature handlers onto one gin engine.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/auth"
	"bookshelf/internal/books"
	"bookshelf/internal/feed"
	"bookshelf/internal/friends"
	"bookshelf/internal/lending"
	"bookshelf/internal/middleware"
	"bookshelf/internal/stats"
	"bookshelf/pkg/database"
	"bookshelf/pkg/utils"
)

type Deps struct {
	Store  *database.Handle
	Hub    *feed.Hub
	Auth   utils.AuthConfig
	Server utils.ServerConfig
	Logger *slog.Logger
	// Now overrides the clock for every handler; nil means time.Now.
	Now func() time.Time
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Hub == nil {
		d.Hub = feed.NewHub()
	}

	router := gin.New()
	router.Use(middleware.Recovery(d.Logger), middleware.RequestLogger(d.Logger), middleware.CORS(d.Server.CORSOrigins))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		fs := d.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.WarnContext(ctx, "readiness check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db":          "unavailable",
				"tcp_clients": fs.TCPClients,
				"ws_clients":  fs.WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": fs.TCPClients,
			"ws_clients":  fs.WSClients,
		})
	})

	allowed := make(map[string]bool, len(d.Server.CORSOrigins))
	for _, o := range d.Server.CORSOrigins {
		allowed[o] = true
	}
	tokenSvc := auth.TokenService{
		Secret:   []byte(d.Auth.JWTSecret),
		Issuer:   d.Auth.JWTIssuer,
		Duration: d.Auth.JWTDuration,
	}
	authHandler := auth.NewHandler(auth.NewRepo(d.Store), tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Data routes. The bearer gate is off unless configured; it covers the
	// lending feed too, so a gated /ws needs the Authorization header.
	data := router.Group("")
	if d.Auth.Required {
		data.Use(auth.AuthMiddleware(tokenSvc))
	}
	data.GET("/ws", feed.WSHandler(d.Hub, feed.NewUpgrader(allowed)))

	bookRepo := books.NewRepo(d.Store)
	bookHandler := books.NewHandler(bookRepo)
	bookHandler.Now = d.Now
	bookHandler.RegisterRoutes(data.Group("/books"))

	friendRepo := friends.NewRepo(d.Store)
	friendHandler := friends.NewHandler(friendRepo)
	friendHandler.Now = d.Now
	friendHandler.RegisterRoutes(data.Group("/friends"))

	lendingSvc := lending.NewService(lending.NewRepo(d.Store), bookRepo, friendRepo, d.Hub)
	lendingSvc.Now = d.Now
	lending.NewHandler(lendingSvc).RegisterRoutes(data.Group("/lendings"))

	agg := stats.NewAggregator(stats.NewRepo(d.Store))
	agg.Now = d.Now
	stats.NewHandler(agg).RegisterRoutes(data.Group("/dashboard"))

	return router
}
