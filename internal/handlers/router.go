package handlers

import (
	"net/http"

	"mockfolio/internal/apierr"
	"mockfolio/internal/metrics"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine: shared middleware, health and metrics, and the
// mock API under prefix.
func NewRouter(h *Handler, m *metrics.Metrics, prefix string) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(h.recovered), RequestID(), RequestLogger(h.log), CORS())
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", m.Handler())
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	h.Register(r.Group(prefix))
	return r
}

func (h *Handler) recovered(c *gin.Context, err any) {
	h.fail(c, apierr.Detail(http.StatusInternalServerError, "Internal Server Error"))
	h.log.WithField("request_id", c.GetString(requestIDKey)).Errorf("panic: %v", err)
}
