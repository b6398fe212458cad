package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/interfaces"
)

// HealthCheck reports whether a dependency such as the database is reachable
type HealthCheck func(ctx context.Context) error

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter builds the HTTP API
func NewRouter(cfg config.HTTPConfig, svcs interfaces.Services, health HealthCheck) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewHandlers(svcs)
	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", h.SignUp)
	authGroup.POST("/signin", h.SignIn)
	authGroup.POST("/signout", RequireAuth(svcs.Identity), h.SignOut)

	protected := v1.Group("", RequireAuth(svcs.Identity))
	protected.GET("/me", h.Me)
	protected.PUT("/me/timezone", h.SetTimezone)

	protected.GET("/settings", h.GetSettings)
	protected.PUT("/settings", h.PutSettings)

	protected.GET("/entries", h.ListEntries)
	protected.POST("/entries", h.AddEntry)
	protected.GET("/entries/stream", h.StreamEntries)
	protected.DELETE("/entries/:id", h.DeleteEntry)

	protected.POST("/dose/suggest", h.SuggestDose)
	protected.POST("/dose/save", h.SaveDose)

	protected.GET("/trend", h.Trend)

	protected.GET("/alarms", h.ListAlarms)
	protected.POST("/alarms", h.AddAlarm)
	protected.DELETE("/alarms/:id", h.DeleteAlarm)

	return r
}

// NewServer wraps the router in an http.Server with the usual timeouts.
// WriteTimeout stays zero so event streams are not cut off.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
