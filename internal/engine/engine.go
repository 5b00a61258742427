// Package engine wraps the underlying audio engine behind a narrow
// interface. The Adapter is the only component allowed to talk to the
// engine; everything else goes through it.
package engine

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Errors
var (
	// ErrAlreadyInitialized is returned by Setup when the engine has
	// already been configured. Callers treat it as benign.
	ErrAlreadyInitialized = errors.New("player is already initialized")
	ErrQueueEmpty         = errors.New("queue is empty")
	ErrIndexOutOfRange    = errors.New("queue index out of range")
)

// State represents the engine's transport state.
type State int

const (
	StateNone      State = iota // Engine not set up or nothing loaded
	StateReady                  // Track loaded, not playing
	StatePlaying                // Playing
	StatePaused                 // Paused
	StateStopped                // Stopped
	StateBuffering              // Buffering before playback
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateBuffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// RepeatMode represents the engine's repeat behavior.
type RepeatMode int

const (
	RepeatOff   RepeatMode = iota // Play through the queue once
	RepeatTrack                   // Repeat the current track
	RepeatQueue                   // Repeat the whole queue
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatTrack:
		return "track"
	case RepeatQueue:
		return "queue"
	default:
		return "unknown"
	}
}

// ParseRepeatMode parses a repeat mode name as used on the wire.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "off":
		return RepeatOff, nil
	case "track":
		return RepeatTrack, nil
	case "queue":
		return RepeatQueue, nil
	default:
		return RepeatOff, errors.Newf("unknown repeat mode %q", s)
	}
}

// Capability is a remote-control capability advertised to the system UI.
type Capability int

const (
	CapabilityPlay Capability = iota
	CapabilityPause
	CapabilityStop
	CapabilitySeekTo
	CapabilitySkipToNext
	CapabilitySkipToPrevious
)

// Item is the engine's queue entry shape. Formatted from a domain Track
// by the Adapter; the engine never sees domain types.
type Item struct {
	ID       string
	URL      string
	Title    string
	Artist   string
	Album    string
	Artwork  string
	Duration time.Duration
	Headers  map[string]string
}

// Options configures the engine at setup time.
type Options struct {
	// Buffering policy: wait for the play buffer before starting so
	// playback does not stutter on slow networks.
	WaitForBuffer bool
	MinBuffer     time.Duration
	PlayBuffer    time.Duration
	BackBuffer    time.Duration
	MaxCacheSize  int64 // On-disk cache bound, bytes

	// Remote-control capabilities for the full and compact
	// (lock-screen/notification) system UI.
	Capabilities        []Capability
	CompactCapabilities []Capability

	// Background behavior: keep playing when the host app backgrounds,
	// stop and clear the system notification if the process is killed.
	ContinueInBackground bool
	StopOnAppKilled      bool
}

// EventType identifies an engine event.
type EventType int

const (
	EventPlaybackState  EventType = iota // Transport state changed
	EventTrackChanged                    // Current queue index changed
	EventQueueEnded                      // Playback ran off the end of the queue
	EventRemotePlay                      // External play signal
	EventRemotePause                     // External pause signal
	EventRemoteStop                      // External stop signal
	EventRemoteNext                      // External next signal
	EventRemotePrevious                  // External previous signal
	EventRemoteSeek                      // External seek signal (payload: position)
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPlaybackState:
		return "playback_state"
	case EventTrackChanged:
		return "track_changed"
	case EventQueueEnded:
		return "queue_ended"
	case EventRemotePlay:
		return "remote_play"
	case EventRemotePause:
		return "remote_pause"
	case EventRemoteStop:
		return "remote_stop"
	case EventRemoteNext:
		return "remote_next"
	case EventRemotePrevious:
		return "remote_previous"
	case EventRemoteSeek:
		return "remote_seek"
	default:
		return "unknown"
	}
}

// Event is an engine notification. Remote events carry a loosely-typed
// payload decoded by the adapter.
type Event struct {
	Type    EventType
	State   State          // Valid for EventPlaybackState
	Index   int            // Valid for EventTrackChanged
	Payload map[string]any // Valid for remote events
}

// Engine is the opaque audio engine boundary. Implementations serialize
// their own commands; two sequential calls from the same flow execute
// in issued order.
type Engine interface {
	Setup(ctx context.Context, opts Options) error
	Reset(ctx context.Context) error
	Add(ctx context.Context, items []Item) error
	Skip(ctx context.Context, index int) error
	SkipToNext(ctx context.Context) error
	SkipToPrevious(ctx context.Context) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	SeekTo(ctx context.Context, pos time.Duration) error
	State(ctx context.Context) (State, error)
	Position(ctx context.Context) (time.Duration, error)
	Duration(ctx context.Context) (time.Duration, error)
	Queue(ctx context.Context) ([]Item, error)
	CurrentIndex(ctx context.Context) (int, error)
	SetRepeatMode(ctx context.Context, mode RepeatMode) error

	// Subscribe registers an event handler and returns a disposer.
	Subscribe(handler func(Event)) (unsubscribe func())
}
