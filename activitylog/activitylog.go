// Package activitylog decorates an engine with structured logging of
// Store, ReadID, Update, Delete, Compact and Close (Contains and Size
// pass through unlogged): a *zap.SugaredLogger injected at construction, one
// Infow call per operation naming the fields a reader would want (id,
// length, duration), and Errorw on failure instead of swallowing the
// error.
package activitylog

import (
	"time"

	"github.com/mrivera-dev/cellar"
	"go.uber.org/zap"
)

// Engine decorates a *cellar.Engine, logging each call through log.
type Engine struct {
	inner *cellar.Engine
	log   *zap.SugaredLogger
}

// New wraps inner, logging through log.
func New(inner *cellar.Engine, log *zap.SugaredLogger) *Engine {
	return &Engine{inner: inner, log: log}
}

func (e *Engine) Store(data []byte) (uint64, error) {
	start := time.Now()
	id, err := e.inner.Store(data)
	if err != nil {
		e.log.Errorw("store failed", "length", len(data), "error", err, "elapsed", time.Since(start))
		return 0, err
	}
	e.log.Infow("stored object", "id", id, "length", len(data), "elapsed", time.Since(start))
	return id, nil
}

func (e *Engine) ReadID(id uint64) ([]byte, error) {
	start := time.Now()
	data, err := e.inner.ReadID(id)
	if err != nil {
		e.log.Errorw("read failed", "id", id, "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	e.log.Infow("read object", "id", id, "length", len(data), "elapsed", time.Since(start))
	return data, nil
}

func (e *Engine) Update(id uint64, data []byte) error {
	start := time.Now()
	if err := e.inner.Update(id, data); err != nil {
		e.log.Errorw("update failed", "id", id, "length", len(data), "error", err, "elapsed", time.Since(start))
		return err
	}
	e.log.Infow("updated object", "id", id, "length", len(data), "elapsed", time.Since(start))
	return nil
}

func (e *Engine) Delete(id uint64) error {
	start := time.Now()
	if err := e.inner.Delete(id); err != nil {
		e.log.Errorw("delete failed", "id", id, "error", err, "elapsed", time.Since(start))
		return err
	}
	e.log.Infow("deleted object", "id", id, "elapsed", time.Since(start))
	return nil
}

func (e *Engine) Contains(id uint64) bool {
	return e.inner.Contains(id)
}

func (e *Engine) Size() int {
	return e.inner.Size()
}

func (e *Engine) Compact() error {
	start := time.Now()
	sizeBefore := e.inner.Size()
	if err := e.inner.Compact(); err != nil {
		e.log.Errorw("compact failed", "error", err, "elapsed", time.Since(start))
		return err
	}
	e.log.Infow("compacted data file", "liveObjects", sizeBefore, "elapsed", time.Since(start))
	return nil
}

func (e *Engine) Close() error {
	e.log.Infow("closing engine", "liveObjects", e.inner.Size())
	return e.inner.Close()
}
