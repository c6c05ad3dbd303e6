package fixtures

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

type Options struct {
	Source      string
	Dir         string
	PostgresURL string
}

// Open loads the fixture Set from the configured source. A Postgres
// connection is held only for the duration of the load.
func Open(ctx context.Context, opts Options, log *logrus.Logger) (*Set, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Source)) {
	case "", SourceEmbedded:
		return EmbeddedLoader{}.Load(ctx)
	case SourceDir:
		return DirLoader{Dir: opts.Dir, Log: log}.Load(ctx)
	case SourcePostgres:
		if opts.PostgresURL == "" {
			return nil, fmt.Errorf("POSTGRES_URL is required for fixture source %q", SourcePostgres)
		}
		db, err := OpenPostgres(opts.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		defer db.Close()
		return NewPostgresLoader(db, log).Load(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, opts.Source)
	}
}
