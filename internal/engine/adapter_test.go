package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundbridge/soundbridge/internal/domain/track"
)

// stubEngine records setup calls; everything else is a no-op.
type stubEngine struct {
	mu         sync.Mutex
	setupCalls int
	setupErr   error
	setupDelay time.Duration
}

func (s *stubEngine) Setup(_ context.Context, _ Options) error {
	s.mu.Lock()
	s.setupCalls++
	err := s.setupErr
	delay := s.setupDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (s *stubEngine) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setupCalls
}

func (s *stubEngine) Reset(context.Context) error                     { return nil }
func (s *stubEngine) Add(context.Context, []Item) error               { return nil }
func (s *stubEngine) Skip(context.Context, int) error                 { return nil }
func (s *stubEngine) SkipToNext(context.Context) error                { return nil }
func (s *stubEngine) SkipToPrevious(context.Context) error            { return nil }
func (s *stubEngine) Play(context.Context) error                      { return nil }
func (s *stubEngine) Pause(context.Context) error                     { return nil }
func (s *stubEngine) Stop(context.Context) error                      { return nil }
func (s *stubEngine) SeekTo(context.Context, time.Duration) error     { return nil }
func (s *stubEngine) State(context.Context) (State, error)            { return StateNone, nil }
func (s *stubEngine) Position(context.Context) (time.Duration, error) { return 0, nil }
func (s *stubEngine) Duration(context.Context) (time.Duration, error) { return 0, nil }
func (s *stubEngine) Queue(context.Context) ([]Item, error)           { return nil, nil }
func (s *stubEngine) CurrentIndex(context.Context) (int, error)       { return -1, nil }
func (s *stubEngine) SetRepeatMode(context.Context, RepeatMode) error { return nil }
func (s *stubEngine) Subscribe(func(Event)) func()                    { return func() {} }

func TestAdapter_InitializeIdempotent(t *testing.T) {
	stub := &stubEngine{}
	a := NewAdapter(stub, DefaultOptions())

	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))
	require.NoError(t, a.Initialize(ctx))
	require.NoError(t, a.Initialize(ctx))

	assert.Equal(t, 1, stub.calls())
	assert.True(t, a.Initialized())
}

func TestAdapter_InitializeConcurrent(t *testing.T) {
	stub := &stubEngine{setupDelay: 20 * time.Millisecond}
	a := NewAdapter(stub, DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Initialize(context.Background()))
		}()
	}
	wg.Wait()

	// The second concurrent call observes the first call's state and
	// does not double-configure.
	assert.Equal(t, 1, stub.calls())
}

func TestAdapter_InitializeBenignDuplicate(t *testing.T) {
	stub := &stubEngine{setupErr: ErrAlreadyInitialized}
	a := NewAdapter(stub, DefaultOptions())

	require.NoError(t, a.Initialize(context.Background()))
	assert.True(t, a.Initialized())
}

func TestAdapter_InitializeFailure(t *testing.T) {
	stub := &stubEngine{setupErr: errors.New("no audio output")}
	a := NewAdapter(stub, DefaultOptions())

	err := a.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, a.Initialized())

	// A later retry goes back to the engine.
	stub.mu.Lock()
	stub.setupErr = nil
	stub.mu.Unlock()
	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, 2, stub.calls())
}

func TestFormatTrack(t *testing.T) {
	tests := []struct {
		name           string
		track          track.Track
		expectedTitle  string
		expectedArtist string
	}{
		{
			name: "full metadata",
			track: track.Track{
				ID:        "t1",
				Title:     "Blue in Green",
				Artist:    "Miles Davis",
				StreamURL: "https://cdn.example.com/t1.mp3",
			},
			expectedTitle:  "Blue in Green",
			expectedArtist: "Miles Davis",
		},
		{
			name:           "missing title and artist",
			track:          track.Track{ID: "t2", StreamURL: "https://cdn.example.com/t2.mp3"},
			expectedTitle:  UnknownTitle,
			expectedArtist: UnknownArtist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := FormatTrack(tt.track)

			assert.Equal(t, tt.track.ID, item.ID)
			assert.Equal(t, tt.track.StreamURL, item.URL)
			assert.Equal(t, tt.expectedTitle, item.Title)
			assert.Equal(t, tt.expectedArtist, item.Artist)

			// Fixed streaming headers are always attached.
			assert.Equal(t, "audio/mpeg", item.Headers["Accept"])
			assert.Contains(t, item.Headers["Cache-Control"], "no-cache")
		})
	}
}

func TestFormatTracks_PreservesOrder(t *testing.T) {
	tracks := []track.Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	items := FormatTracks(tracks)

	require.Len(t, items, 3)
	for i := range tracks {
		assert.Equal(t, tracks[i].ID, items[i].ID)
	}
}

func TestTrackFromItem(t *testing.T) {
	item := Item{
		ID:       "t1",
		URL:      "https://cdn.example.com/t1.mp3",
		Title:    "So What",
		Artist:   "Miles Davis",
		Duration: 545 * time.Second,
	}
	got := TrackFromItem(item)

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "So What", got.Title)
	assert.Equal(t, "Miles Davis", got.Artist)
	assert.Equal(t, 545*time.Second, got.Duration)
	assert.Equal(t, item.URL, got.StreamURL)
}
