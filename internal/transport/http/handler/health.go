package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ink2deck/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	Enabled bool   `json:"enabled"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports 503 when the credential store or an enabled optional
// dependency is down.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]dependencyStatus{
		"mysql":    h.checkMySQL(ctx),
		"sessions": h.checkSessions(ctx),
		"rabbitmq": h.checkRabbitMQ(),
	}

	statusCode := http.StatusOK
	for _, s := range deps {
		if s.Enabled && !s.OK {
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, gin.H{
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"strategies":   h.app.Strategies,
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkMySQL(ctx context.Context) dependencyStatus {
	if h.app.StoreErr != nil {
		return dependencyStatus{Enabled: true, Message: h.app.StoreErr.Error()}
	}
	if h.app.MySQL == nil {
		return dependencyStatus{Enabled: true, Message: "not configured"}
	}
	sqlDB, err := h.app.MySQL.DB()
	if err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{Enabled: true, OK: true}
}

func (h *HealthHandler) checkSessions(ctx context.Context) dependencyStatus {
	if h.app.Backend == nil {
		return dependencyStatus{Enabled: true, Message: "not configured"}
	}
	if err := h.app.Backend.Ping(ctx); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{Enabled: true, OK: true, Message: h.app.Config.Session.Backend}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.Config.RabbitMQ.URL == "" {
		return dependencyStatus{}
	}
	if h.app.MQConn == nil || h.app.MQConn.IsClosed() {
		return dependencyStatus{Enabled: true, Message: "connection closed"}
	}
	return dependencyStatus{Enabled: true, OK: true}
}
