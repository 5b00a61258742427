// Package session bridges engine events to observable playback state.
// It is the sole entry point consumers use: a process-wide Session
// mirrors engine events into CurrentTrack/IsPlaying/IsShuffled/
// RepeatMode and exposes the orchestrator's operations.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/soundbridge/soundbridge/internal/app/playback"
	"github.com/soundbridge/soundbridge/internal/domain/track"
	"github.com/soundbridge/soundbridge/internal/engine"
)

// Resolver fetches full track metadata by ID. Optional: when absent,
// the session republishes the queue item's own metadata.
type Resolver interface {
	Resolve(ctx context.Context, trackID string) (*track.Track, error)
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	CurrentTrack *track.Track
	IsPlaying    bool
	IsShuffled   bool
	RepeatMode   engine.RepeatMode
}

// Watcher receives state snapshots whenever session state changes.
type Watcher func(Snapshot)

// Session is the process-wide playback state. Created at app start,
// it survives screen navigation and is only reset by an explicit Stop.
type Session struct {
	mu sync.RWMutex

	id       string
	adapter  *engine.Adapter
	orch     *playback.Orchestrator
	resolver Resolver

	currentTrack *track.Track
	isPlaying    bool
	isShuffled   bool
	repeatMode   engine.RepeatMode

	watchers    map[int]Watcher
	nextWatcher int

	unsubscribe func()
	started     bool
}

// New creates a session over the given adapter and orchestrator.
// resolver may be nil.
func New(adapter *engine.Adapter, orch *playback.Orchestrator, resolver Resolver) *Session {
	return &Session{
		id:       uuid.NewString(),
		adapter:  adapter,
		orch:     orch,
		resolver: resolver,
		watchers: make(map[int]Watcher),
	}
}

// ID returns the session's unique ID.
func (s *Session) ID() string {
	return s.id
}

// Start subscribes to engine events and kicks off engine
// initialization without blocking the caller. Idempotent. Playback
// requests issued before initialization settles trigger and await it
// themselves inside the orchestrator.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.unsubscribe = s.adapter.Subscribe(s.onEngineEvent)
	s.mu.Unlock()

	go func() {
		if err := s.adapter.Initialize(ctx); err != nil {
			zlog.Error().Msgf("session: engine initialization failed: %v", err)
		}
	}()
}

// Close detaches the session from engine events.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.started = false
}

// onEngineEvent is the only path by which CurrentTrack and IsPlaying
// change.
func (s *Session) onEngineEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EventPlaybackState:
		s.mu.Lock()
		s.isPlaying = ev.State == engine.StatePlaying
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)

	case engine.EventTrackChanged:
		t := s.lookupTrack(ev.Index)
		s.mu.Lock()
		s.currentTrack = t
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)

	case engine.EventQueueEnded:
		s.mu.Lock()
		s.isPlaying = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
	}
}

// lookupTrack reads the queue item at index and enriches it through
// the resolver when one is configured. Resolution is best-effort.
func (s *Session) lookupTrack(index int) *track.Track {
	ctx := context.Background()

	items, err := s.adapter.Queue(ctx)
	if err != nil {
		zlog.Warn().Msgf("session: queue read failed on track change: %v", err)
		return nil
	}
	if index < 0 || index >= len(items) {
		return nil
	}
	t := engine.TrackFromItem(items[index])

	if s.resolver != nil {
		resolved, err := s.resolver.Resolve(ctx, t.ID)
		if err != nil {
			zlog.Warn().Msgf("session: metadata lookup for %q failed: %v", t.ID, err)
		} else if resolved != nil {
			merged := *resolved
			if merged.StreamURL == "" {
				merged.StreamURL = t.StreamURL
			}
			if merged.Duration == 0 {
				merged.Duration = t.Duration
			}
			t = merged
		}
	}
	return &t
}

// PlayTrack plays a track within a playlist.
func (s *Session) PlayTrack(ctx context.Context, t track.Track, playlist []track.Track) error {
	return s.orch.PlayTrack(ctx, t, playlist)
}

// LoadPlaylist adopts a playlist as the active queue.
func (s *Session) LoadPlaylist(ctx context.Context, tracks []track.Track, autoplay bool) error {
	return s.orch.LoadPlaylist(ctx, tracks, autoplay)
}

// TogglePlayback flips play/pause.
func (s *Session) TogglePlayback(ctx context.Context) error {
	return s.orch.TogglePlayback(ctx)
}

// SkipToNext moves to the next track.
func (s *Session) SkipToNext(ctx context.Context) error {
	return s.orch.SkipToNext(ctx)
}

// SkipToPrevious restarts or moves back per the restart threshold.
func (s *Session) SkipToPrevious(ctx context.Context) error {
	return s.orch.SkipToPrevious(ctx)
}

// SeekTo seeks within the current track.
func (s *Session) SeekTo(ctx context.Context, pos time.Duration) error {
	return s.orch.SeekTo(ctx, pos)
}

// Stop stops playback and resets session state to empty.
func (s *Session) Stop(ctx context.Context) error {
	if err := s.orch.Stop(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.currentTrack = nil
	s.isPlaying = false
	s.isShuffled = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// ToggleShuffle flips shuffle mode. The engine does not push shuffle
// state back as an event, so the flag is read back from the
// orchestrator, which can decline (nothing loaded to shuffle).
func (s *Session) ToggleShuffle(ctx context.Context) error {
	s.mu.RLock()
	enabled := !s.isShuffled
	s.mu.RUnlock()

	if err := s.orch.SetShuffleMode(ctx, enabled); err != nil {
		return err
	}

	shuffled := s.orch.IsShuffled()
	s.mu.Lock()
	s.isShuffled = shuffled
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// ToggleRepeat cycles repeat through off, track, queue and back to off.
func (s *Session) ToggleRepeat(ctx context.Context) error {
	s.mu.RLock()
	next := nextRepeatMode(s.repeatMode)
	s.mu.RUnlock()

	if err := s.orch.SetRepeatMode(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.repeatMode = next
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// SetRepeatMode sets repeat to an explicit mode.
func (s *Session) SetRepeatMode(ctx context.Context, mode engine.RepeatMode) error {
	if err := s.orch.SetRepeatMode(ctx, mode); err != nil {
		return err
	}

	s.mu.Lock()
	s.repeatMode = mode
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

func nextRepeatMode(m engine.RepeatMode) engine.RepeatMode {
	switch m {
	case engine.RepeatOff:
		return engine.RepeatTrack
	case engine.RepeatTrack:
		return engine.RepeatQueue
	default:
		return engine.RepeatOff
	}
}

// CurrentTrack returns the current track, or nil.
func (s *Session) CurrentTrack() *track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTrack
}

// IsPlaying reports whether the engine is playing.
func (s *Session) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

// IsShuffled reports whether the queue is shuffled.
func (s *Session) IsShuffled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isShuffled
}

// RepeatMode returns the current repeat mode.
func (s *Session) RepeatMode() engine.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repeatMode
}

// Snapshot returns the full session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		CurrentTrack: s.currentTrack,
		IsPlaying:    s.isPlaying,
		IsShuffled:   s.isShuffled,
		RepeatMode:   s.repeatMode,
	}
}

// Watch registers a watcher and returns a disposer.
func (s *Session) Watch(w Watcher) func() {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = w
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// notify delivers a snapshot to all watchers outside the lock.
func (s *Session) notify(snap Snapshot) {
	s.mu.RLock()
	watchers := make([]Watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.RUnlock()

	for _, w := range watchers {
		w(snap)
	}
}
