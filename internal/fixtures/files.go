package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
)

//go:embed data/*.json
var embedded embed.FS

const (
	usersFile       = "users.json"
	positionsFile   = "positions.json"
	tradesFile      = "trades.json"
	lotsFile        = "lots.json"
	performanceFile = "performance.json"
	metadataFile    = "metadata.json"
)

func embeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// EmbeddedLoader serves the fixtures compiled into the binary.
type EmbeddedLoader struct{}

func (EmbeddedLoader) Load(_ context.Context) (*Set, error) {
	return loadFS(embeddedFS(), nil)
}

// DirLoader reads fixture files from Dir. Files missing from Dir fall back to
// the embedded copy.
type DirLoader struct {
	Dir string
	Log *logrus.Logger
}

func (l DirLoader) Load(_ context.Context) (*Set, error) {
	st, err := os.Stat(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("fixture dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("fixture dir %s is not a directory", l.Dir)
	}
	return loadFS(os.DirFS(l.Dir), func(name string) {
		if l.Log != nil {
			l.Log.Warnf("fixture %s not found in %s, using embedded copy", name, l.Dir)
		}
	})
}

func loadFS(fsys fs.FS, onFallback func(name string)) (*Set, error) {
	read := func(name string) ([]byte, error) {
		b, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) && onFallback != nil {
			onFallback(name)
			return fs.ReadFile(embeddedFS(), name)
		}
		return b, err
	}

	set := &Set{}
	targets := []struct {
		name string
		dst  any
	}{
		{usersFile, &set.Users},
		{positionsFile, &set.Positions},
		{tradesFile, &set.Trades},
		{lotsFile, &set.Lots},
		{performanceFile, &set.Performance},
	}
	for _, t := range targets {
		b, err := read(t.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.name, err)
		}
		if err := json.Unmarshal(b, t.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.name, err)
		}
	}
	meta, err := read(metadataFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", metadataFile, err)
	}
	set.Metadata = meta

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
