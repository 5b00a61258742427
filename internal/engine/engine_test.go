package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		input   string
		want    RepeatMode
		wantErr bool
	}{
		{input: "off", want: RepeatOff},
		{input: "track", want: RepeatTrack},
		{input: "queue", want: RepeatQueue},
		{input: "loud", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepeatMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepeatModeRoundTrip(t *testing.T) {
	for _, mode := range []RepeatMode{RepeatOff, RepeatTrack, RepeatQueue} {
		got, err := ParseRepeatMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "unknown", State(99).String())
}
