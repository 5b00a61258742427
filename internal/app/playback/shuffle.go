package playback

import (
	"context"
	"math/rand"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/soundbridge/soundbridge/internal/domain/track"
	"github.com/soundbridge/soundbridge/internal/engine"
)

// SetShuffleMode enables or disables shuffle. Enabling pins the
// currently playing track to the front and Fisher-Yates shuffles the
// rest, then reloads the engine queue and resumes at position 0 if
// something was playing. Disabling restores the remembered pre-shuffle
// ordering and re-locates the current track within it.
func (o *Orchestrator) SetShuffleMode(ctx context.Context, enabled bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if enabled == o.shuffled {
		return nil
	}
	if enabled {
		return o.enableShuffleLocked(ctx)
	}
	return o.disableShuffleLocked(ctx)
}

func (o *Orchestrator) enableShuffleLocked(ctx context.Context) error {
	queue := o.queue
	if len(queue) == 0 {
		// Nothing remembered: adopt whatever the engine holds.
		items, err := o.adapter.Queue(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read engine queue")
		}
		for _, it := range items {
			queue = append(queue, engine.TrackFromItem(it))
		}
	}
	if len(queue) == 0 {
		return nil
	}

	currentID, wasPlaying, err := o.captureCurrentLocked(ctx)
	if err != nil {
		return err
	}

	original := append([]track.Track(nil), queue...)
	shuffledQueue := shuffleTracks(queue, currentID)

	if err := o.reloadQueueLocked(ctx, shuffledQueue, 0, wasPlaying); err != nil {
		return err
	}

	o.original = original
	o.queue = shuffledQueue
	o.shuffled = true
	zlog.Debug().Msgf("playback: shuffle enabled: tracks=%d pinned=%q", len(shuffledQueue), currentID)
	return nil
}

func (o *Orchestrator) disableShuffleLocked(ctx context.Context) error {
	restored := o.original
	if len(restored) == 0 {
		o.shuffled = false
		return nil
	}

	currentID, wasPlaying, err := o.captureCurrentLocked(ctx)
	if err != nil {
		return err
	}

	index := 0
	if currentID != "" {
		index = track.IndexOf(restored, currentID)
		if index < 0 {
			// Should not happen: the current track always came from
			// the original ordering. Load anyway, restart from the top.
			zlog.Warn().Msgf("playback: current track %q not found in restored order", currentID)
			index = 0
		}
	}

	if err := o.reloadQueueLocked(ctx, restored, index, wasPlaying); err != nil {
		return err
	}

	o.queue = append([]track.Track(nil), restored...)
	o.original = nil
	o.shuffled = false
	zlog.Debug().Msgf("playback: shuffle disabled: resumed=%q index=%d", currentID, index)
	return nil
}

// captureCurrentLocked reads the currently playing track ID and play
// state, tolerating an idle engine.
func (o *Orchestrator) captureCurrentLocked(ctx context.Context) (string, bool, error) {
	var currentID string
	cur, err := o.currentTrackLocked(ctx)
	if err != nil {
		return "", false, err
	}
	if cur != nil {
		currentID = cur.ID
	}

	st, err := o.adapter.State(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to read engine state")
	}
	return currentID, st == engine.StatePlaying, nil
}

// reloadQueueLocked replaces the engine queue with the given order,
// skips to index and resumes playback if it was active.
func (o *Orchestrator) reloadQueueLocked(ctx context.Context, tracks []track.Track, index int, resume bool) error {
	if err := o.adapter.Reset(ctx); err != nil && !isBenignInit(err) {
		return errors.Wrap(err, "failed to reset engine queue")
	}
	if err := o.adapter.Add(ctx, engine.FormatTracks(tracks)); err != nil {
		return errors.Wrap(err, "failed to load queue into engine")
	}
	if err := o.adapter.Skip(ctx, index); err != nil {
		return errors.Wrapf(err, "failed to skip to index %d", index)
	}
	if resume {
		if err := o.adapter.Play(ctx); err != nil && !isBenignInit(err) {
			return wrapPlayError(err)
		}
	}
	return nil
}

// shuffleTracks returns a new order with the track matching currentID
// pinned to the front and the remaining entries Fisher-Yates shuffled.
func shuffleTracks(tracks []track.Track, currentID string) []track.Track {
	rest := make([]track.Track, 0, len(tracks))
	out := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if currentID != "" && t.ID == currentID {
			out = append(out, t)
			continue
		}
		rest = append(rest, t)
	}
	rand.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	return append(out, rest...)
}
