package remote

import (
	"context"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundbridge/soundbridge/internal/app/playback"
	"github.com/soundbridge/soundbridge/internal/app/session"
	"github.com/soundbridge/soundbridge/internal/engine"
	"github.com/soundbridge/soundbridge/internal/engine/memengine"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	eng := memengine.New()
	adapter := engine.NewAdapter(eng, engine.DefaultOptions())
	orch := playback.New(adapter, playback.Config{})
	sess := session.New(adapter, orch, nil)
	sess.Start(context.Background())
	t.Cleanup(sess.Close)

	_, handler := NewHandler(NewService(sess, orch))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.Client(), srv.URL)
}

func wireTracks(ids ...string) []TrackInfo {
	out := make([]TrackInfo, len(ids))
	for i, id := range ids {
		out[i] = TrackInfo{
			ID:        id,
			Title:     "Title " + id,
			Artist:    "Artist " + id,
			StreamURL: "https://stream.example.com/" + id,
			Duration:  "3:45",
		}
	}
	return out
}

func TestPlayTrackAndNowPlaying(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	tracks := wireTracks("a", "b", "c")

	status, err := c.PlayTrack(ctx, &PlayTrackRequest{Track: tracks[1], Tracks: tracks})
	require.NoError(t, err)
	assert.True(t, status.IsPlaying)

	now, err := c.NowPlaying(ctx)
	require.NoError(t, err)
	require.NotNil(t, now.Track)
	assert.Equal(t, "b", now.Track.ID)
	assert.Equal(t, "Title b", now.Track.Title)
	assert.True(t, now.IsPlaying)
	assert.Equal(t, "off", now.RepeatMode)
	// "3:45" normalized to seconds on receipt.
	assert.Equal(t, 225.0, now.DurationSeconds)
}

func TestPlayTrackNotInPlaylist(t *testing.T) {
	c := newTestClient(t)
	tracks := wireTracks("a", "c")

	_, err := c.PlayTrack(context.Background(), &PlayTrackRequest{
		Track:  TrackInfo{ID: "b"},
		Tracks: tracks,
	})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestLoadPlaylistAndToggle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	status, err := c.LoadPlaylist(ctx, &LoadPlaylistRequest{
		Name:     "Morning Mix",
		Tracks:   wireTracks("a", "b"),
		Autoplay: true,
	})
	require.NoError(t, err)
	assert.True(t, status.IsPlaying)

	status, err = c.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsPlaying)

	status, err = c.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsPlaying)
}

func TestNextAndPrevious(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	tracks := wireTracks("a", "b", "c")

	_, err := c.PlayTrack(ctx, &PlayTrackRequest{Track: tracks[0], Tracks: tracks})
	require.NoError(t, err)

	_, err = c.Next(ctx)
	require.NoError(t, err)

	now, err := c.NowPlaying(ctx)
	require.NoError(t, err)
	require.NotNil(t, now.Track)
	assert.Equal(t, "b", now.Track.ID)

	_, err = c.Previous(ctx)
	require.NoError(t, err)

	now, err = c.NowPlaying(ctx)
	require.NoError(t, err)
	require.NotNil(t, now.Track)
	assert.Equal(t, "a", now.Track.ID)
}

func TestSeek(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	tracks := wireTracks("a")

	_, err := c.PlayTrack(ctx, &PlayTrackRequest{Track: tracks[0], Tracks: tracks})
	require.NoError(t, err)

	_, err = c.Seek(ctx, 42.5)
	require.NoError(t, err)

	now, err := c.NowPlaying(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42.5, now.PositionSeconds)
}

func TestSeekRejectsNegative(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Seek(context.Background(), -1)
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestToggleRepeatCyclesModes(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	status, err := c.ToggleRepeat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "track", status.RepeatMode)

	status, err = c.ToggleRepeat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "queue", status.RepeatMode)

	status, err = c.ToggleRepeat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "off", status.RepeatMode)
}

func TestSetRepeat(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	status, err := c.SetRepeat(ctx, "queue")
	require.NoError(t, err)
	assert.Equal(t, "queue", status.RepeatMode)

	status, err = c.SetRepeat(ctx, "off")
	require.NoError(t, err)
	assert.Equal(t, "off", status.RepeatMode)

	_, err = c.SetRepeat(ctx, "loud")
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestToggleShuffleAndStop(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	tracks := wireTracks("a", "b", "c")

	_, err := c.PlayTrack(ctx, &PlayTrackRequest{Track: tracks[0], Tracks: tracks})
	require.NoError(t, err)

	status, err := c.ToggleShuffle(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsShuffled)

	status, err = c.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsPlaying)
	assert.False(t, status.IsShuffled)

	now, err := c.NowPlaying(ctx)
	require.NoError(t, err)
	assert.Nil(t, now.Track)
}

func TestTrackInfoRoundTrip(t *testing.T) {
	ti := TrackInfo{ID: "x", Title: "Song", Duration: 200}
	tr := ti.ToTrack()
	assert.Equal(t, 200.0, tr.Duration.Seconds())

	back := TrackInfoFrom(tr)
	assert.Equal(t, "x", back.ID)
	assert.Equal(t, 200.0, back.Duration)
}
