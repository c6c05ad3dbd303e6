// Package fixtures loads the read-only collections the mock API serves.
//
// A Set is built once at startup and shared by every request. Nothing in the
// process writes to it afterwards, so readers need no locking.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mockfolio/internal/models"
	"mockfolio/internal/query"
)

var ErrUnknownSource = errors.New("unknown fixture source")

type Set struct {
	Users       []models.User
	Positions   []models.Position
	Trades      []models.Trade
	Lots        []models.Lot
	Performance []models.PerformancePoint
	Metadata    models.AssetMetadata
}

// Loader produces a fixture Set.
type Loader interface {
	Load(ctx context.Context) (*Set, error)
}

// Authenticate reports whether username and password exactly match a fixture user.
func (s *Set) Authenticate(username, password string) bool {
	for _, u := range s.Users {
		if u.Username == username && u.Password == password {
			return true
		}
	}
	return false
}

func (s *Set) Validate() error {
	for i, u := range s.Users {
		if strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf("users[%d]: empty username", i)
		}
	}
	for i, p := range s.Positions {
		if p.Ticker == "" {
			return fmt.Errorf("positions[%d]: empty ticker", i)
		}
	}
	for i, t := range s.Trades {
		if t.Ticker == "" {
			return fmt.Errorf("trades[%d]: empty ticker", i)
		}
	}
	for i, l := range s.Lots {
		if l.Ticker == "" {
			return fmt.Errorf("lots[%d]: empty ticker", i)
		}
	}
	for i, p := range s.Performance {
		if _, ok := query.ParseDate(p.Date); !ok {
			return fmt.Errorf("performance[%d]: invalid date %q", i, p.Date)
		}
	}
	if len(s.Metadata) == 0 {
		s.Metadata = models.AssetMetadata("{}")
	}
	if !json.Valid(s.Metadata) {
		return errors.New("metadata: invalid JSON document")
	}
	return nil
}
