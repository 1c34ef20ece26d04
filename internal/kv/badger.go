// Package kv opens the badger store shared by the token registry and the
// signal journal.
package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/hireledger/internal/logging"
)

// Open opens a badger database under dataDir/kv. An empty dataDir opens an
// in-memory store whose contents vanish on Close.
func Open(dataDir string, logger logging.Logger) (*badger.DB, error) {
	if logger == nil {
		logger = logging.Nop{}
	}
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		opts = badger.DefaultOptions(filepath.Join(dataDir, "kv"))
	}
	opts = opts.
		WithLogger(&badgerLogger{l: logger.With("component", "badger")}).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// badgerLogger adapts logging.Logger to badger.Logger.
type badgerLogger struct {
	l logging.Logger
}

func (b *badgerLogger) Errorf(msg string, args ...any) {
	b.l.Error(context.Background(), fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Warningf(msg string, args ...any) {
	b.l.Warn(context.Background(), fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Infof(msg string, args ...any) {
	b.l.Info(context.Background(), fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Debugf(msg string, args ...any) {
	b.l.Debug(context.Background(), fmt.Sprintf(msg, args...))
}
