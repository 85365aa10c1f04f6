// Package manager owns the lifecycle of the resident recognition engine and
// mediates concurrent access to it for streaming transcription.
//
// At most one engine instance is resident at a time. It is loaded lazily,
// reused across transcription calls, and evicted explicitly, after a
// configured idle window, or immediately after finalize, per policy.
package manager

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rbright/murmur/internal/catalog"
	"github.com/rbright/murmur/internal/engine"
	"github.com/rbright/murmur/internal/notify"
	"github.com/rbright/murmur/internal/settings"
)

// DefaultPollInterval is the idle watcher's wake cadence.
const DefaultPollInterval = 10 * time.Second

// Options wires the manager's collaborators.
type Options struct {
	Logger   *slog.Logger
	Catalog  catalog.Catalog
	Settings settings.Provider
	Factory  engine.Factory
	// Sink receives lifecycle events; nil means events are discarded.
	Sink notify.Sink
	// PollInterval overrides the idle watcher cadence; <= 0 uses the default.
	PollInterval time.Duration
}

// Manager coordinates the engine slot, the load coordinator, the idle
// watcher, and the streaming accumulation buffer.
type Manager struct {
	logger     *slog.Logger
	catalog    catalog.Catalog
	settings   settings.Provider
	factory    engine.Factory
	sink       notify.Sink

	// mu guards the engine slot as a unit: the handle, the model ID, and
	// every call into the engine. Readers can never observe a handle
	// without its identifier.
	mu      sync.Mutex
	eng     engine.Engine
	modelID string

	// loadMu + loadCond gate transcription while a background load is in
	// flight; loading is only touched under loadMu.
	loadMu   sync.Mutex
	loadCond *sync.Cond
	loading  bool

	// flight collapses concurrent explicit loads of the same model into
	// one underlying attempt.
	flight singleflight.Group

	// lastActivity is a unix-millisecond stamp; approximate consistency
	// with the other fields is acceptable, so no lock is involved.
	lastActivity atomic.Int64

	accumMu   sync.Mutex
	accum     string
	sessionID string

	pollInterval time.Duration
	shutdown     chan struct{}
	watcherDone  chan struct{}
	closeOnce    sync.Once
}

// New constructs a Manager and starts its idle watcher.
func New(opts Options) (*Manager, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("manager: catalog is required")
	}
	if opts.Settings == nil {
		return nil, fmt.Errorf("manager: settings provider is required")
	}
	if opts.Factory == nil {
		return nil, fmt.Errorf("manager: engine factory is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Sink
	if sink == nil {
		sink = notify.Noop{}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	m := &Manager{
		logger:       logger.With("component", "manager"),
		catalog:      opts.Catalog,
		settings:     opts.Settings,
		factory:      opts.Factory,
		sink:         sink,
		sessionID:    uuid.NewString(),
		pollInterval: interval,
		shutdown:     make(chan struct{}),
		watcherDone:  make(chan struct{}),
	}
	m.loadCond = sync.NewCond(&m.loadMu)
	m.lastActivity.Store(time.Now().UnixMilli())

	go m.watch()
	return m, nil
}

// Close stops the idle watcher and blocks until it has exited, so no
// eviction can start once Close returns. The resident engine, if any,
// stays loaded; callers that want eviction call Unload first.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.shutdown) })
	<-m.watcherDone
}

// IsLoaded reports whether an engine instance is resident.
func (m *Manager) IsLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng != nil
}

// CurrentModel returns the resident model's catalog ID, or "" when empty.
func (m *Manager) CurrentModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelID
}

// Load validates modelID against the catalog, constructs an engine from its
// artifacts, and installs it in the slot. Concurrent loads of the same model
// share one underlying attempt. A failed load leaves the manager usable.
func (m *Manager) Load(modelID string) error {
	_, err, _ := m.flight.Do(modelID, func() (any, error) {
		return nil, m.loadModel(modelID)
	})
	return err
}

func (m *Manager) loadModel(modelID string) error {
	start := time.Now()
	m.emit(notify.Event{Type: notify.EventLoadingStarted, ModelID: modelID})

	info, ok := m.catalog.ModelInfo(modelID)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrModelNotFound, modelID)
		m.emit(notify.Event{Type: notify.EventLoadingFailed, ModelID: modelID, Error: err.Error()})
		return err
	}
	if !info.Downloaded {
		err := fmt.Errorf("%w: %q", ErrModelNotDownloaded, modelID)
		m.emit(notify.Event{Type: notify.EventLoadingFailed, ModelID: modelID, ModelName: info.Name, Error: err.Error()})
		return err
	}
	if info.Kind != engine.KindParakeet {
		err := fmt.Errorf("%w: %q models cannot be made resident", ErrUnsupportedEngineKind, info.Kind)
		m.emit(notify.Event{Type: notify.EventLoadingFailed, ModelID: modelID, ModelName: info.Name, Error: err.Error()})
		return err
	}

	path, err := m.catalog.ModelPath(modelID)
	if err != nil {
		wrapped := fmt.Errorf("%w: resolve %q: %v", ErrEngineLoad, modelID, err)
		m.emit(notify.Event{Type: notify.EventLoadingFailed, ModelID: modelID, ModelName: info.Name, Error: wrapped.Error()})
		return wrapped
	}

	m.logger.Info("loading model", "model_id", modelID, "path", path)
	eng, err := m.factory(path, engine.LoadOptions{})
	if err != nil {
		wrapped := fmt.Errorf("%w: %q: %v", ErrEngineLoad, modelID, err)
		m.emit(notify.Event{Type: notify.EventLoadingFailed, ModelID: modelID, ModelName: info.Name, Error: wrapped.Error()})
		return wrapped
	}

	m.mu.Lock()
	if m.eng != nil {
		if cerr := m.eng.Close(); cerr != nil {
			m.logger.Warn("close replaced engine", "error", cerr)
		}
	}
	m.eng = eng
	m.modelID = modelID
	m.mu.Unlock()

	m.emit(notify.Event{Type: notify.EventLoadingCompleted, ModelID: modelID, ModelName: info.Name})
	m.logger.Debug("model loaded", "model_id", modelID, "took_ms", time.Since(start).Milliseconds())
	return nil
}

// Unload releases the resident engine and clears the slot. It always emits
// an unloaded event, even when the slot was already empty.
func (m *Manager) Unload() error {
	m.mu.Lock()
	if m.eng != nil {
		if err := m.eng.Close(); err != nil {
			m.logger.Warn("engine close", "error", err)
		}
	}
	m.eng = nil
	m.modelID = ""
	m.mu.Unlock()

	m.emit(notify.Event{Type: notify.EventUnloaded})
	m.logger.Debug("model unloaded")
	return nil
}

// InitiateLoad kicks off loading the configured model in the background.
// It no-ops when a load is already in flight or an engine is resident.
// Errors are logged only; retry is the caller's decision.
func (m *Manager) InitiateLoad() {
	m.loadMu.Lock()
	if m.loading || m.IsLoaded() {
		m.loadMu.Unlock()
		return
	}
	m.loading = true
	m.loadMu.Unlock()

	go func() {
		modelID := m.settings.Settings().SelectedModel
		if err := m.Load(modelID); err != nil {
			m.logger.Error("background model load failed", "model_id", modelID, "error", err)
		}

		m.loadMu.Lock()
		m.loading = false
		m.loadMu.Unlock()
		m.loadCond.Broadcast()
	}()
}

// awaitLoad blocks while a background load is in flight, re-checking on
// every wake.
func (m *Manager) awaitLoad() {
	m.loadMu.Lock()
	for m.loading {
		m.loadCond.Wait()
	}
	m.loadMu.Unlock()
}

// withEngine runs fn against the resident engine under the slot lock. It is
// the only path to the engine outside Load/Unload.
func (m *Manager) withEngine(fn func(engine.Engine) (string, error)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eng == nil {
		return "", ErrModelNotLoaded
	}
	text, err := fn(m.eng)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}
	return text, nil
}

// emit delivers a lifecycle event to the sink, ignoring any sink failure.
func (m *Manager) emit(event notify.Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("notification sink panicked", "event_type", event.Type, "panic", r)
		}
	}()
	m.sink.Emit(event)
}
