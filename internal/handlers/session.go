package handlers

import (
	"net/http"

	"mockfolio/internal/session"

	"github.com/gin-gonic/gin"
)

// cookieFlags stores the browser-side session flags as cookies.
type cookieFlags struct{ c *gin.Context }

func (f cookieFlags) Clear(name string) {
	f.c.SetCookie(name, "", -1, "/", "", false, false)
}

type sessionEvent struct {
	name string
	data gin.H
}

// SessionExpired streams the session-expiry countdown as server-sent events:
// "countdown" from the start value down to 0, then one "redirect". A client
// that disconnects early unmounts the view and gets no redirect.
func (h *Handler) SessionExpired(c *gin.Context) {
	// room for every count plus the redirect, so callbacks never block
	events := make(chan sessionEvent, h.sessionSeconds+2)

	view := session.NewExpiryView(session.ViewConfig{
		Log:      h.log,
		Flags:    cookieFlags{c},
		Seconds:  h.sessionSeconds,
		Interval: h.sessionInterval,
		Ticker:   h.sessionTicker,
		OnCount: func(n int) {
			events <- sessionEvent{"countdown", gin.H{"remaining": n}}
		},
		Redirect: func(path string) {
			if h.metrics != nil {
				h.metrics.SessionRedirects.Inc()
			}
			events <- sessionEvent{"redirect", gin.H{"location": path}}
		},
	})

	ctx := c.Request.Context()
	if err := view.Mount(ctx); err != nil {
		h.log.Errorf("mount session view: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "session view unavailable"})
		return
	}
	defer view.Unmount()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("session view client went away")
			return
		case ev := <-events:
			c.SSEvent(ev.name, ev.data)
			c.Writer.Flush()
			if ev.name == "redirect" {
				return
			}
		}
	}
}
