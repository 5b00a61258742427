// Package remote exposes the playback session over Connect RPC. It is
// the daemon's remote-control surface: external play/pause/next/
// previous/seek/stop signals plus a now-playing query. Messages are
// hand-written structs carried by a JSON codec; there is no generated
// schema in this repository.
package remote

import (
	"github.com/soundbridge/soundbridge/internal/domain/track"
)

// Procedure paths for the remote service.
const (
	ProcedureLoadPlaylist  = "/soundbridge.remote.v1.RemoteService/LoadPlaylist"
	ProcedurePlayTrack     = "/soundbridge.remote.v1.RemoteService/PlayTrack"
	ProcedureToggle        = "/soundbridge.remote.v1.RemoteService/Toggle"
	ProcedureNext          = "/soundbridge.remote.v1.RemoteService/Next"
	ProcedurePrevious      = "/soundbridge.remote.v1.RemoteService/Previous"
	ProcedureSeek          = "/soundbridge.remote.v1.RemoteService/Seek"
	ProcedureStop          = "/soundbridge.remote.v1.RemoteService/Stop"
	ProcedureToggleShuffle = "/soundbridge.remote.v1.RemoteService/ToggleShuffle"
	ProcedureToggleRepeat  = "/soundbridge.remote.v1.RemoteService/ToggleRepeat"
	ProcedureSetRepeat     = "/soundbridge.remote.v1.RemoteService/SetRepeat"
	ProcedureNowPlaying    = "/soundbridge.remote.v1.RemoteService/NowPlaying"
)

// TrackInfo is the wire shape of a track. Duration accepts either
// numeric seconds or an "MM:SS" string, normalized on receipt.
type TrackInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	StreamURL  string `json:"stream_url,omitempty"`
	Duration   any    `json:"duration,omitempty"`
}

// ToTrack converts the wire shape into the domain Track.
func (ti TrackInfo) ToTrack() track.Track {
	return track.Track{
		ID:         ti.ID,
		Title:      ti.Title,
		Artist:     ti.Artist,
		Album:      ti.Album,
		ArtworkURL: ti.ArtworkURL,
		StreamURL:  ti.StreamURL,
		Duration:   track.NormalizeDuration(ti.Duration),
	}
}

// TrackInfoFrom converts a domain Track into the wire shape.
func TrackInfoFrom(t track.Track) TrackInfo {
	return TrackInfo{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		ArtworkURL: t.ArtworkURL,
		StreamURL:  t.StreamURL,
		Duration:   t.Duration.Seconds(),
	}
}

// LoadPlaylistRequest asks the daemon to adopt a playlist.
type LoadPlaylistRequest struct {
	Name     string      `json:"name,omitempty"`
	Tracks   []TrackInfo `json:"tracks"`
	Autoplay bool        `json:"autoplay,omitempty"`
}

// PlayTrackRequest asks the daemon to play a track within a playlist.
type PlayTrackRequest struct {
	Track  TrackInfo   `json:"track"`
	Tracks []TrackInfo `json:"tracks"`
}

// CommandRequest is the empty request for simple transport commands.
type CommandRequest struct{}

// RepeatRequest carries a repeat mode name: "off", "track" or "queue".
type RepeatRequest struct {
	Mode string `json:"mode"`
}

// SeekRequest carries a seek position in seconds.
type SeekRequest struct {
	PositionSeconds float64 `json:"position_seconds"`
}

// StatusResponse reports session state after a command.
type StatusResponse struct {
	IsPlaying  bool   `json:"is_playing"`
	IsShuffled bool   `json:"is_shuffled"`
	RepeatMode string `json:"repeat_mode"`
}

// NowPlayingRequest is the empty now-playing query.
type NowPlayingRequest struct{}

// NowPlayingResponse reports the full observable session state.
type NowPlayingResponse struct {
	Track           *TrackInfo `json:"track,omitempty"`
	IsPlaying       bool       `json:"is_playing"`
	IsShuffled      bool       `json:"is_shuffled"`
	RepeatMode      string     `json:"repeat_mode"`
	PositionSeconds float64    `json:"position_seconds"`
	DurationSeconds float64    `json:"duration_seconds"`
}
