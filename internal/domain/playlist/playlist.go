// Package playlist provides the Playlist domain entity.
package playlist

import (
	"time"

	"github.com/soundbridge/soundbridge/internal/domain/track"
)

// Playlist is an ordered sequence of tracks. Insertion order defines
// playback order absent shuffle. The core does not persist playlists;
// whichever screen initiated playback owns it transiently until the
// orchestrator adopts it as the current queue.
type Playlist struct {
	ID     string
	Name   string
	Tracks []track.Track
}

// TrackIDs returns all track IDs in order.
func (p *Playlist) TrackIDs() []string {
	return track.IDs(p.Tracks)
}

// TotalDuration returns the summed duration of all tracks.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// Contains reports whether a track with the given ID is present.
func (p *Playlist) Contains(id string) bool {
	return track.IndexOf(p.Tracks, id) >= 0
}

// IndexOf returns the position of the given track ID, or -1.
func (p *Playlist) IndexOf(id string) int {
	return track.IndexOf(p.Tracks, id)
}
