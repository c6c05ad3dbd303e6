package handlers

import (
	"net/http"
	"time"

	"mockfolio/internal/apierr"
	"mockfolio/internal/auth"
	"mockfolio/internal/fixtures"
	"mockfolio/internal/metrics"
	"mockfolio/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	set     *fixtures.Set
	issuer  *auth.Issuer
	metrics *metrics.Metrics
	log     *logrus.Logger

	sessionSeconds  int
	sessionInterval time.Duration
	sessionTicker   session.TickerFunc
}

type Options struct {
	Issuer  *auth.Issuer
	Metrics *metrics.Metrics

	SessionSeconds  int
	SessionInterval time.Duration
	// SessionTicker replaces the wall-clock ticker, for tests.
	SessionTicker session.TickerFunc
}

func NewHandler(set *fixtures.Set, log *logrus.Logger, opts Options) *Handler {
	if opts.Issuer == nil {
		opts.Issuer = auth.NewIssuer(30 * time.Minute)
	}
	if opts.SessionSeconds <= 0 {
		opts.SessionSeconds = session.DefaultSeconds
	}
	if opts.SessionInterval <= 0 {
		opts.SessionInterval = time.Second
	}
	return &Handler{
		set:             set,
		issuer:          opts.Issuer,
		metrics:         opts.Metrics,
		log:             log,
		sessionSeconds:  opts.SessionSeconds,
		sessionInterval: opts.SessionInterval,
		sessionTicker:   opts.SessionTicker,
	}
}

// Route is one entry of the mock API route table.
type Route struct {
	Method string
	Path   string
	// Public routes skip the bearer check.
	Public  bool
	Handler gin.HandlerFunc
}

func (h *Handler) Routes() []Route {
	return []Route{
		{http.MethodPost, "/login", true, h.Login},
		{http.MethodGet, "/portfolio/all", false, h.GetPositions},
		{http.MethodGet, "/portfolio/all/performance", false, h.GetPerformance},
		{http.MethodGet, "/portfolio/trades/:ticker", false, h.GetTrades},
		{http.MethodGet, "/portfolio/lots/:ticker", false, h.GetLots},
		{http.MethodGet, "/asset/brokers/:ticker", false, h.GetBrokers},
		{http.MethodGet, "/asset/metadata/all", false, h.GetMetadata},
		{http.MethodGet, "/session/expired", true, h.SessionExpired},
	}
}

// Register mounts the route table on g.
func (h *Handler) Register(g gin.IRouter) {
	requireAuth := RequireBearer(h.log)
	for _, rt := range h.Routes() {
		if rt.Public {
			g.Handle(rt.Method, rt.Path, rt.Handler)
			continue
		}
		g.Handle(rt.Method, rt.Path, requireAuth, rt.Handler)
	}
}

func (h *Handler) fail(c *gin.Context, err *apierr.Error) {
	entry := h.log.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"status":     err.Status,
	})
	if err.Status >= http.StatusInternalServerError {
		entry.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		entry.Warnf("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	apierr.Abort(c, err)
}
