// Package memengine provides an in-memory Engine implementation. It
// keeps queue and transport state without producing audio, serving as
// the headless default for the daemon and the substrate for tests.
package memengine

import (
	"context"
	"sync"
	"time"

	"github.com/soundbridge/soundbridge/internal/engine"
)

// Engine is an in-memory audio engine.
type Engine struct {
	mu sync.Mutex

	setup    bool
	opts     engine.Options
	queue    []engine.Item
	index    int
	state    engine.State
	position time.Duration
	repeat   engine.RepeatMode

	handlers map[int]func(engine.Event)
	nextSub  int
}

var _ engine.Engine = (*Engine)(nil)

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{
		index:    -1,
		state:    engine.StateNone,
		handlers: make(map[int]func(engine.Event)),
	}
}

// Setup configures the engine. A second call returns
// engine.ErrAlreadyInitialized.
func (e *Engine) Setup(_ context.Context, opts engine.Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.setup {
		return engine.ErrAlreadyInitialized
	}
	e.setup = true
	e.opts = opts
	return nil
}

// Options returns the options passed at setup time.
func (e *Engine) Options() engine.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

func (e *Engine) Reset(_ context.Context) error {
	e.mu.Lock()
	e.queue = nil
	e.index = -1
	e.position = 0
	e.state = engine.StateNone
	ev := engine.Event{Type: engine.EventPlaybackState, State: e.state}
	e.mu.Unlock()

	e.emit(ev)
	return nil
}

func (e *Engine) Add(_ context.Context, items []engine.Item) error {
	e.mu.Lock()
	wasEmpty := len(e.queue) == 0
	e.queue = append(e.queue, items...)
	var events []engine.Event
	if wasEmpty && len(e.queue) > 0 {
		e.index = 0
		e.state = engine.StateReady
		events = append(events, engine.Event{Type: engine.EventTrackChanged, Index: 0})
	}
	e.mu.Unlock()

	for _, ev := range events {
		e.emit(ev)
	}
	return nil
}

func (e *Engine) Skip(_ context.Context, index int) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.queue) {
		e.mu.Unlock()
		return engine.ErrIndexOutOfRange
	}
	e.index = index
	e.position = 0
	ev := engine.Event{Type: engine.EventTrackChanged, Index: index}
	e.mu.Unlock()

	e.emit(ev)
	return nil
}

func (e *Engine) SkipToNext(ctx context.Context) error {
	e.mu.Lock()
	next := e.index + 1
	if next >= len(e.queue) {
		if e.repeat != engine.RepeatQueue || len(e.queue) == 0 {
			e.mu.Unlock()
			return engine.ErrIndexOutOfRange
		}
		next = 0
	}
	e.mu.Unlock()
	return e.Skip(ctx, next)
}

func (e *Engine) SkipToPrevious(ctx context.Context) error {
	e.mu.Lock()
	prev := e.index - 1
	if prev < 0 {
		if e.repeat != engine.RepeatQueue || len(e.queue) == 0 {
			e.mu.Unlock()
			return engine.ErrIndexOutOfRange
		}
		prev = len(e.queue) - 1
	}
	e.mu.Unlock()
	return e.Skip(ctx, prev)
}

func (e *Engine) Play(_ context.Context) error {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return engine.ErrQueueEmpty
	}
	e.state = engine.StatePlaying
	ev := engine.Event{Type: engine.EventPlaybackState, State: e.state}
	e.mu.Unlock()

	e.emit(ev)
	return nil
}

func (e *Engine) Pause(_ context.Context) error {
	e.mu.Lock()
	e.state = engine.StatePaused
	ev := engine.Event{Type: engine.EventPlaybackState, State: e.state}
	e.mu.Unlock()

	e.emit(ev)
	return nil
}

func (e *Engine) Stop(_ context.Context) error {
	e.mu.Lock()
	e.state = engine.StateStopped
	e.position = 0
	ev := engine.Event{Type: engine.EventPlaybackState, State: e.state}
	e.mu.Unlock()

	e.emit(ev)
	return nil
}

func (e *Engine) SeekTo(_ context.Context, pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	e.position = pos
	return nil
}

func (e *Engine) State(_ context.Context) (engine.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, nil
}

func (e *Engine) Position(_ context.Context) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, nil
}

func (e *Engine) Duration(_ context.Context) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index < 0 || e.index >= len(e.queue) {
		return 0, nil
	}
	return e.queue[e.index].Duration, nil
}

func (e *Engine) Queue(_ context.Context) ([]engine.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]engine.Item, len(e.queue))
	copy(out, e.queue)
	return out, nil
}

func (e *Engine) CurrentIndex(_ context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index, nil
}

func (e *Engine) SetRepeatMode(_ context.Context, mode engine.RepeatMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.repeat = mode
	return nil
}

// RepeatMode returns the current repeat mode.
func (e *Engine) RepeatMode() engine.RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repeat
}

// Subscribe registers an event handler and returns a disposer.
func (e *Engine) Subscribe(handler func(engine.Event)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.handlers[id] = handler
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.handlers, id)
		e.mu.Unlock()
	}
}

// SetPosition moves the playhead without a transport command. Used by
// simulations and tests to model elapsed playback.
func (e *Engine) SetPosition(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = pos
}

// SignalRemote injects a remote-control event, as a lock screen or
// headset would.
func (e *Engine) SignalRemote(t engine.EventType, payload map[string]any) {
	e.emit(engine.Event{Type: t, Payload: payload})
}

// emit delivers an event to all subscribers on the calling goroutine.
// Never called with the mutex held: handlers are allowed to call back
// into the engine.
func (e *Engine) emit(ev engine.Event) {
	e.mu.Lock()
	handlers := make([]func(engine.Event), 0, len(e.handlers))
	for _, h := range e.handlers {
		handlers = append(handlers, h)
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
