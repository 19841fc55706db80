package api

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SwarmView is the minimal surface the dashboard needs from a running
// investigation — satisfied by *swarm.Swarm without internal/api importing
// internal/swarm, which would otherwise create a package cycle with
// anything swarm-side that wants to mount this router.
type SwarmView interface {
	DashboardStats() SwarmStats
}

// SwarmStats mirrors swarm.Stats' externally useful fields for dashboard
// reporting.
type SwarmStats struct {
	Tick             int
	ElapsedSeconds   float64
	ActiveSignals    int
	TotalIntensity   float64
	AverageIntensity float64
	HistorySize      int
	SummaryFound     bool
}

// Handler serves the live investigation dashboard: health, point-in-time
// field/swarm stats, and a websocket stream of tick events.
type Handler struct {
	swarm SwarmView
	wsHub *Hub
	start time.Time
}

// SetupRouter builds the dashboard's gin.Engine: CORS, optional bearer-token
// auth, and per-IP rate limiting on the stats endpoints.
func SetupRouter(sw SwarmView, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &Handler{swarm: sw, wsHub: wsHub, start: time.Now()}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(60, 10).Middleware())
	{
		protected.GET("/stats", handler.handleStats)
	}

	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.start).String(),
	})
}

func (h *Handler) handleStats(c *gin.Context) {
	stats := h.swarm.DashboardStats()
	c.JSON(http.StatusOK, gin.H{
		"tick":             stats.Tick,
		"elapsedSeconds":   stats.ElapsedSeconds,
		"activeSignals":    stats.ActiveSignals,
		"totalIntensity":   stats.TotalIntensity,
		"averageIntensity": stats.AverageIntensity,
		"historySize":      stats.HistorySize,
		"summaryFound":     stats.SummaryFound,
	})
}
