// Package autosave periodically writes the open project to storage.
//
// An [Autosaver] owns one ticker. [Autosaver.Start] launches it and
// [Autosaver.Stop] tears it down; nothing else in the editor holds timer
// state. On every tick the autosaver asks its [Source] for the current
// document, serializes it as a project record and overwrites
// storage.AutosaveKey. Failures are logged and swallowed: autosave is a
// convenience and must never interrupt editing.
package autosave

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/observability"
	"github.com/matzehuels/meteomap/pkg/project"
	"github.com/matzehuels/meteomap/pkg/storage"
)

// DefaultPeriod is the interval between autosaves.
const DefaultPeriod = 30 * time.Second

// Source returns the document to save. Front ends implement it by taking
// their own lock around the session, so a tick re-enters through the same
// serialisation as user events.
type Source func(ctx context.Context) (document.Document, error)

// Autosaver writes the source document to a store on a fixed period.
type Autosaver struct {
	store  storage.Store
	source Source
	clock  clockwork.Clock
	period time.Duration
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures an Autosaver.
type Option func(*Autosaver)

// WithClock sets the clock. Tests pass a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(a *Autosaver) { a.clock = c }
}

// WithPeriod sets the interval between saves. Non-positive values are ignored.
func WithPeriod(d time.Duration) Option {
	return func(a *Autosaver) {
		if d > 0 {
			a.period = d
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(a *Autosaver) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates a stopped autosaver.
func New(store storage.Store, source Source, opts ...Option) *Autosaver {
	a := &Autosaver{
		store:  store,
		source: source,
		clock:  clockwork.NewRealClock(),
		period: DefaultPeriod,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Period returns the save interval.
func (a *Autosaver) Period() time.Duration { return a.period }

// Start launches the ticker. Calling Start on a running autosaver does
// nothing. The ticker stops when ctx is cancelled or Stop is called.
func (a *Autosaver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	ticker := a.clock.NewTicker(a.period)
	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if err := a.SaveNow(ctx); err != nil {
					a.logger.Warn("autosave failed", "backend", a.store.Name(), "err", err)
				}
			}
		}
	}(a.done)
	a.logger.Debug("autosave started", "backend", a.store.Name(), "period", a.period)
}

// Stop halts the ticker and waits for an in-flight save to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.logger.Debug("autosave stopped")
}

// Running reports whether the ticker is active.
func (a *Autosaver) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// SaveNow writes the current document immediately.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	start := a.clock.Now()
	doc, err := a.source(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "read document")
	}
	data, err := project.Marshal(doc, start)
	if err != nil {
		return err
	}
	err = a.store.Set(ctx, storage.AutosaveKey, data)
	observability.Storage().OnSave(ctx, a.store.Name(), len(data), a.clock.Since(start), err)
	if err != nil {
		return err
	}
	a.logger.Debug("autosaved", "backend", a.store.Name(), "elements", len(doc.Elements), "bytes", len(data))
	return nil
}

// Restore loads the autosaved document. The boolean is false when nothing
// has been saved yet.
func Restore(ctx context.Context, store storage.Store) (document.Document, bool, error) {
	data, ok, err := store.Get(ctx, storage.AutosaveKey)
	observability.Storage().OnLoad(ctx, store.Name(), ok, err)
	if err != nil || !ok {
		return document.Document{}, false, err
	}
	doc, err := project.Unmarshal(data)
	if err != nil {
		return document.Document{}, false, err
	}
	return doc, true, nil
}
