// Package playback owns playlist and queue policy: loading playlists,
// playing a specific track within a playlist, shuffle and repeat
// transitions, and recovery from reinitialization races.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/soundbridge/soundbridge/internal/domain/track"
	"github.com/soundbridge/soundbridge/internal/engine"
)

// DefaultPreviousRestartThreshold is how far into a track a "previous"
// press restarts the track instead of going back.
const DefaultPreviousRestartThreshold = 3 * time.Second

// Config holds orchestrator configuration.
type Config struct {
	PreviousRestartThreshold time.Duration
}

// Orchestrator makes all queue-level decisions. Operations are
// serialized by an internal mutex, so two overlapping PlayTrack calls
// cannot interleave their reset/add/skip sequences.
type Orchestrator struct {
	mu sync.Mutex

	adapter *engine.Adapter
	config  Config

	// queue is the orchestrator's remembered view of the engine queue.
	// original holds the pre-shuffle ordering while shuffle is active;
	// it is the source of truth for restore, never the live engine
	// queue.
	queue    []track.Track
	original []track.Track
	shuffled bool
}

var _ engine.Transport = (*Orchestrator)(nil)

// New creates an orchestrator around the given engine adapter.
func New(adapter *engine.Adapter, cfg Config) *Orchestrator {
	if cfg.PreviousRestartThreshold <= 0 {
		cfg.PreviousRestartThreshold = DefaultPreviousRestartThreshold
	}
	return &Orchestrator{adapter: adapter, config: cfg}
}

// ensureReady initializes the engine if a caller got here before the
// session bootstrap finished. Duplicate initialization is benign.
func (o *Orchestrator) ensureReady(ctx context.Context) error {
	if err := o.adapter.Initialize(ctx); err != nil {
		if isBenignInit(err) {
			return nil
		}
		return err
	}
	return nil
}

// LoadPlaylist adopts the given ordered track list as the engine queue.
// If the engine already holds the same ID sequence the reload is
// skipped entirely; with autoplay set, playback is started if it is not
// already active. On a real reload the currently playing track and
// position are captured best-effort and, with autoplay, restored when
// the track is still present in the new queue.
func (o *Orchestrator) LoadPlaylist(ctx context.Context, tracks []track.Track, autoplay bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureReady(ctx); err != nil {
		return err
	}

	items, err := o.adapter.Queue(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read engine queue")
	}

	if sameIDSequence(items, tracks) {
		o.queue = append([]track.Track(nil), tracks...)
		if !autoplay {
			return nil
		}
		st, err := o.adapter.State(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read engine state")
		}
		if st != engine.StatePlaying {
			if err := o.adapter.Play(ctx); err != nil && !isBenignInit(err) {
				return wrapPlayError(err)
			}
		}
		return nil
	}

	// Capture what is playing right now. A failure to read the current
	// position is tolerated and treated as nothing playing.
	var (
		currentID string
		position  time.Duration
	)
	if idx, err := o.adapter.CurrentIndex(ctx); err == nil && idx >= 0 && idx < len(items) {
		currentID = items[idx].ID
		if pos, err := o.adapter.Position(ctx); err == nil {
			position = pos
		} else {
			zlog.Debug().Msgf("playback: position read failed during reload, treating as idle: %v", err)
			currentID = ""
		}
	}

	if err := o.adapter.Reset(ctx); err != nil {
		if !isBenignInit(err) {
			return errors.Wrap(err, "failed to reset engine queue")
		}
	}
	if err := o.adapter.Add(ctx, engine.FormatTracks(tracks)); err != nil {
		return errors.Wrap(err, "failed to load playlist into engine")
	}

	o.queue = append([]track.Track(nil), tracks...)
	o.original = nil
	o.shuffled = false

	if autoplay && currentID != "" {
		if idx := track.IndexOf(tracks, currentID); idx >= 0 {
			if err := o.adapter.Skip(ctx, idx); err != nil {
				return errors.Wrap(err, "failed to skip to previous track after reload")
			}
			if err := o.adapter.SeekTo(ctx, position); err != nil {
				return errors.Wrap(err, "failed to restore position after reload")
			}
			if err := o.adapter.Play(ctx); err != nil && !isBenignInit(err) {
				return wrapPlayError(err)
			}
		}
	}

	zlog.Debug().Msgf("playback: playlist loaded: tracks=%d autoplay=%v", len(tracks), autoplay)
	return nil
}

// PlayTrack plays the given track within the given playlist. Unlike
// LoadPlaylist this is queue-authoritative: the engine queue is always
// replaced. The play command gets exactly one retry before failure is
// surfaced.
func (o *Orchestrator) PlayTrack(ctx context.Context, t track.Track, playlist []track.Track) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureReady(ctx); err != nil {
		return err
	}

	// Validate the caller contract before touching the engine, so a
	// bad call leaves the current queue intact.
	idx := track.IndexOf(playlist, t.ID)
	if idx < 0 {
		err := errors.Wrapf(ErrTrackNotInPlaylist, "track %q", t.ID)
		zlog.Error().Msgf("playback: %v", err)
		return err
	}

	if err := o.adapter.Reset(ctx); err != nil {
		if !isBenignInit(err) {
			return errors.Wrap(err, "failed to reset engine queue")
		}
	}
	if err := o.adapter.Add(ctx, engine.FormatTracks(playlist)); err != nil {
		return errors.Wrap(err, "failed to load playlist into engine")
	}
	if err := o.adapter.Skip(ctx, idx); err != nil {
		return errors.Wrapf(err, "failed to skip to track %q", t.ID)
	}

	if err := o.playWithRetry(ctx); err != nil {
		zlog.Error().Msgf("playback: play track %q failed: %v", t.ID, err)
		return err
	}

	o.queue = append([]track.Track(nil), playlist...)
	o.original = nil
	o.shuffled = false

	zlog.Debug().Msgf("playback: playing track=%q index=%d queue=%d", t.ID, idx, len(playlist))
	return nil
}

// playWithRetry issues the play command with a single retry for
// transient failures.
func (o *Orchestrator) playWithRetry(ctx context.Context) error {
	err := o.adapter.Play(ctx)
	if err == nil || isBenignInit(err) {
		return nil
	}
	zlog.Warn().Msgf("playback: play failed, retrying once: %v", err)

	err = o.adapter.Play(ctx)
	if err == nil || isBenignInit(err) {
		return nil
	}
	return wrapPlayError(err)
}

// TogglePlayback reads the engine state and issues the inverse command.
func (o *Orchestrator) TogglePlayback(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureReady(ctx); err != nil {
		return err
	}

	st, err := o.adapter.State(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read engine state")
	}
	if st == engine.StatePlaying {
		return o.adapter.Pause(ctx)
	}
	if err := o.adapter.Play(ctx); err != nil && !isBenignInit(err) {
		return wrapPlayError(err)
	}
	return nil
}

// Play starts or resumes playback.
func (o *Orchestrator) Play(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureReady(ctx); err != nil {
		return err
	}
	if err := o.adapter.Play(ctx); err != nil && !isBenignInit(err) {
		return wrapPlayError(err)
	}
	return nil
}

// Pause pauses playback.
func (o *Orchestrator) Pause(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adapter.Pause(ctx)
}

// SkipToNext advances to the next track. Already on the last track it
// is a no-op, so the engine cannot wrap or error past the end while
// repeat is off.
func (o *Orchestrator) SkipToNext(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx, err := o.adapter.CurrentIndex(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read current index")
	}
	items, err := o.adapter.Queue(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read engine queue")
	}
	if idx >= len(items)-1 {
		zlog.Debug().Msg("playback: skip next ignored, already at last track")
		return nil
	}
	return o.adapter.SkipToNext(ctx)
}

// SkipToPrevious restarts the current track when more than the restart
// threshold has elapsed, and only moves to the previous track within
// the first seconds of playback.
func (o *Orchestrator) SkipToPrevious(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pos, err := o.adapter.Position(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read position")
	}
	if pos > o.config.PreviousRestartThreshold {
		return o.adapter.SeekTo(ctx, 0)
	}
	if err := o.adapter.SkipToPrevious(ctx); err != nil {
		// Nothing before the first track: restart it instead.
		if errors.Is(err, engine.ErrIndexOutOfRange) {
			return o.adapter.SeekTo(ctx, 0)
		}
		return errors.Wrap(err, "failed to skip to previous track")
	}
	return nil
}

// SetRepeatMode maps directly onto the engine primitive.
func (o *Orchestrator) SetRepeatMode(ctx context.Context, mode engine.RepeatMode) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adapter.SetRepeatMode(ctx, mode)
}

// SeekTo seeks within the current track.
func (o *Orchestrator) SeekTo(ctx context.Context, pos time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adapter.SeekTo(ctx, pos)
}

// Position returns the playhead position within the current track.
func (o *Orchestrator) Position(ctx context.Context) (time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adapter.Position(ctx)
}

// Duration returns the duration of the current track.
func (o *Orchestrator) Duration(ctx context.Context) (time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adapter.Duration(ctx)
}

// CurrentTrack returns the track at the engine's current index, or nil
// when nothing is loaded.
func (o *Orchestrator) CurrentTrack(ctx context.Context) (*track.Track, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentTrackLocked(ctx)
}

func (o *Orchestrator) currentTrackLocked(ctx context.Context) (*track.Track, error) {
	idx, err := o.adapter.CurrentIndex(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read current index")
	}
	items, err := o.adapter.Queue(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read engine queue")
	}
	if idx < 0 || idx >= len(items) {
		return nil, nil
	}
	t := engine.TrackFromItem(items[idx])
	return &t, nil
}

// Stop stops playback and forgets the remembered queue, so the next
// LoadPlaylist treats everything as new.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.adapter.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop playback")
	}
	if err := o.adapter.Reset(ctx); err != nil && !isBenignInit(err) {
		return errors.Wrap(err, "failed to clear engine queue")
	}
	o.queue = nil
	o.original = nil
	o.shuffled = false
	return nil
}

// IsShuffled reports whether the queue is currently shuffled.
func (o *Orchestrator) IsShuffled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shuffled
}

// sameIDSequence compares an engine queue against a track list by
// identity sequence.
func sameIDSequence(items []engine.Item, tracks []track.Track) bool {
	if len(items) != len(tracks) {
		return false
	}
	for i := range items {
		if items[i].ID != tracks[i].ID {
			return false
		}
	}
	return true
}
