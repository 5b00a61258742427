package engine

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/soundbridge/soundbridge/internal/domain/track"
)

// Fallbacks used when a track arrives without metadata.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// DefaultOptions returns the buffering policy and remote-control
// capability set used when no configuration overrides them.
func DefaultOptions() Options {
	return Options{
		WaitForBuffer: true,
		MinBuffer:     15 * time.Second,
		PlayBuffer:    2500 * time.Millisecond,
		BackBuffer:    30 * time.Second,
		MaxCacheSize:  50 * 1024 * 1024,
		Capabilities: []Capability{
			CapabilityPlay,
			CapabilityPause,
			CapabilityStop,
			CapabilitySeekTo,
			CapabilitySkipToNext,
			CapabilitySkipToPrevious,
		},
		CompactCapabilities: []Capability{
			CapabilityPlay,
			CapabilityPause,
			CapabilitySkipToNext,
			CapabilitySkipToPrevious,
		},
		ContinueInBackground: true,
		StopOnAppKilled:      true,
	}
}

// StreamHeaders returns the fixed headers attached to every streamed
// item: force audio/mpeg acceptance and disable caching at the proxy.
func StreamHeaders() map[string]string {
	return map[string]string{
		"Accept":        "audio/mpeg",
		"Cache-Control": "no-cache, no-store",
		"Pragma":        "no-cache",
	}
}

// Adapter wraps an Engine with one-time setup and domain translation.
// Exactly one Adapter exists per running process; it is constructed at
// startup and passed by reference to the orchestrator.
type Adapter struct {
	mu          sync.Mutex
	engine      Engine
	opts        Options
	initialized bool
}

// NewAdapter creates an Adapter around the given engine.
func NewAdapter(e Engine, opts Options) *Adapter {
	return &Adapter{engine: e, opts: opts}
}

// Initialize configures the engine. Idempotent and safe to call
// concurrently: a second caller blocks until the first setup settles
// and then observes its outcome without re-configuring. A setup failure
// is fatal to playback and is surfaced, not swallowed.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	if err := a.engine.Setup(ctx, a.opts); err != nil {
		if errors.Is(err, ErrAlreadyInitialized) {
			a.initialized = true
			return nil
		}
		return errors.Wrap(err, "engine setup failed")
	}

	zlog.Debug().Msg("engine: initialized")
	a.initialized = true
	return nil
}

// Initialized reports whether setup has completed.
func (a *Adapter) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// FormatTrack is a pure transform from a domain Track to the engine's
// queue item shape. Missing title/artist fall back to the Unknown
// constants; the fixed streaming headers are always attached.
func FormatTrack(t track.Track) Item {
	title := t.Title
	if title == "" {
		title = UnknownTitle
	}
	artist := t.Artist
	if artist == "" {
		artist = UnknownArtist
	}
	return Item{
		ID:       t.ID,
		URL:      t.StreamURL,
		Title:    title,
		Artist:   artist,
		Album:    t.Album,
		Artwork:  t.ArtworkURL,
		Duration: track.NormalizeDuration(t.Duration),
		Headers:  StreamHeaders(),
	}
}

// FormatTracks formats a whole playlist, preserving order.
func FormatTracks(tracks []track.Track) []Item {
	items := make([]Item, len(tracks))
	for i, t := range tracks {
		items[i] = FormatTrack(t)
	}
	return items
}

// TrackFromItem converts a queue item back to its domain shape, used
// when republishing the current track from engine events.
func TrackFromItem(it Item) track.Track {
	return track.Track{
		ID:         it.ID,
		Title:      it.Title,
		Artist:     it.Artist,
		Album:      it.Album,
		ArtworkURL: it.Artwork,
		Duration:   it.Duration,
		StreamURL:  it.URL,
	}
}

// Transport command wrappers. These are deliberately thin: policy lives
// in the orchestrator, the adapter only forwards.

func (a *Adapter) Reset(ctx context.Context) error { return a.engine.Reset(ctx) }

func (a *Adapter) Add(ctx context.Context, items []Item) error { return a.engine.Add(ctx, items) }

func (a *Adapter) Skip(ctx context.Context, index int) error { return a.engine.Skip(ctx, index) }

func (a *Adapter) SkipToNext(ctx context.Context) error { return a.engine.SkipToNext(ctx) }

func (a *Adapter) SkipToPrevious(ctx context.Context) error { return a.engine.SkipToPrevious(ctx) }

func (a *Adapter) Play(ctx context.Context) error { return a.engine.Play(ctx) }

func (a *Adapter) Pause(ctx context.Context) error { return a.engine.Pause(ctx) }

func (a *Adapter) Stop(ctx context.Context) error { return a.engine.Stop(ctx) }

func (a *Adapter) SeekTo(ctx context.Context, pos time.Duration) error {
	return a.engine.SeekTo(ctx, pos)
}

func (a *Adapter) State(ctx context.Context) (State, error) { return a.engine.State(ctx) }

func (a *Adapter) Position(ctx context.Context) (time.Duration, error) {
	return a.engine.Position(ctx)
}

func (a *Adapter) Duration(ctx context.Context) (time.Duration, error) {
	return a.engine.Duration(ctx)
}

func (a *Adapter) Queue(ctx context.Context) ([]Item, error) { return a.engine.Queue(ctx) }

func (a *Adapter) CurrentIndex(ctx context.Context) (int, error) {
	return a.engine.CurrentIndex(ctx)
}

func (a *Adapter) SetRepeatMode(ctx context.Context, mode RepeatMode) error {
	return a.engine.SetRepeatMode(ctx, mode)
}

// Subscribe registers an event handler and returns a disposer.
func (a *Adapter) Subscribe(handler func(Event)) func() {
	return a.engine.Subscribe(handler)
}
