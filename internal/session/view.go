package session

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// FlagSessionExpired marks that the previous session ended by expiry.
	FlagSessionExpired = "sessionExpired"

	LoginPath = "/login"

	DefaultSeconds = 5
)

// Flags is the client-persisted state the view clears on mount.
type Flags interface {
	Clear(name string)
}

type ViewConfig struct {
	Log      *logrus.Logger
	Flags    Flags
	Seconds  int
	Interval time.Duration
	Ticker   TickerFunc

	// OnCount receives the number shown to the user, starting at Seconds.
	OnCount func(remaining int)
	// Redirect is called once with LoginPath when the countdown completes.
	Redirect func(path string)
}

// ExpiryView tells the user their session expired, counts down and then
// sends them to the login page.
type ExpiryView struct {
	cfg       ViewConfig
	countdown *Countdown
}

func NewExpiryView(cfg ViewConfig) *ExpiryView {
	if cfg.Seconds <= 0 {
		cfg.Seconds = DefaultSeconds
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.OnCount == nil {
		cfg.OnCount = func(int) {}
	}
	if cfg.Redirect == nil {
		cfg.Redirect = func(string) {}
	}
	return &ExpiryView{cfg: cfg}
}

func (v *ExpiryView) Mount(ctx context.Context) error {
	if v.countdown != nil {
		return errors.New("view already mounted")
	}
	if v.cfg.Flags != nil {
		v.cfg.Flags.Clear(FlagSessionExpired)
	}
	v.cfg.Log.Infof("session expired, redirecting to login in %d seconds", v.cfg.Seconds)
	v.cfg.OnCount(v.cfg.Seconds)

	v.countdown = NewCountdown(v.cfg.Seconds, v.cfg.Interval, v.cfg.Ticker, v.cfg.OnCount, func() {
		v.cfg.Log.Info("session countdown finished, redirecting to login")
		v.cfg.Redirect(LoginPath)
	})
	return v.countdown.Start(ctx)
}

// Unmount stops the countdown. Once it returns, neither OnCount nor Redirect
// will be called again.
func (v *ExpiryView) Unmount() {
	if v.countdown != nil {
		v.countdown.Stop()
	}
}
