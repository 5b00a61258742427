package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials are required")
}

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare ID", input: "4uLU6hMCjMI75M1A2tKUQC", want: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "URI", input: "spotify:track:4uLU6hMCjMI75M1A2tKUQC", want: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "open URL", input: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", want: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "URL with query", input: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc123", want: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "surrounding whitespace", input: "  4uLU6hMCjMI75M1A2tKUQC  ", want: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTrackID(tt.input))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limit", err: errors.New("API rate limit exceeded"), want: true},
		{name: "429", err: errors.New("unexpected status 429"), want: true},
		{name: "503", err: errors.New("unexpected status 503"), want: true},
		{name: "not found", err: errors.New("track not found"), want: false},
		{name: "bad request", err: errors.New("invalid id"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestRetry(t *testing.T) {
	c := &Client{maxRetries: 3, retryDelay: time.Millisecond}

	t.Run("succeeds after transient failure", func(t *testing.T) {
		calls := 0
		err := c.retry(func() error {
			calls++
			if calls < 2 {
				return errors.New("unexpected status 503")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up on permanent failure", func(t *testing.T) {
		calls := 0
		err := c.retry(func() error {
			calls++
			return errors.New("track not found")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("bounded retries", func(t *testing.T) {
		calls := 0
		err := c.retry(func() error {
			calls++
			return errors.New("unexpected status 429")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max retries exceeded")
		assert.Equal(t, 3, calls)
	})
}

func TestConvertTrack(t *testing.T) {
	full := &spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:   "track1",
			Name: "Song Title",
			Artists: []spotify.SimpleArtist{
				{Name: "First Artist"},
				{Name: "Second Artist"},
			},
			Duration: 225000,
		},
		Album: spotify.SimpleAlbum{
			Name: "Album Name",
			Images: []spotify.Image{
				{URL: "https://img.example.com/large.jpg"},
				{URL: "https://img.example.com/small.jpg"},
			},
		},
	}

	got := convertTrack(full)
	assert.Equal(t, "track1", got.ID)
	assert.Equal(t, "Song Title", got.Title)
	assert.Equal(t, "First Artist, Second Artist", got.Artist)
	assert.Equal(t, "Album Name", got.Album)
	assert.Equal(t, "https://img.example.com/large.jpg", got.ArtworkURL)
	assert.Equal(t, 225*time.Second, got.Duration)
}

func TestConvertTrackWithoutArtwork(t *testing.T) {
	full := &spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{ID: "track2", Name: "Bare"},
	}
	got := convertTrack(full)
	assert.Empty(t, got.ArtworkURL)
	assert.Empty(t, got.Artist)
}
