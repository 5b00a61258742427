package playback

import (
	"net"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/soundbridge/soundbridge/internal/engine"
)

// Errors
var (
	// ErrTrackNotInPlaylist is raised when PlayTrack is asked to play a
	// track whose ID is absent from the supplied playlist. This is a
	// caller contract violation and is never retried.
	ErrTrackNotInPlaylist = errors.New("track not found in playlist")

	// ErrNetworkUnavailable marks failures whose cause is connectivity.
	// Surfaced with a user-actionable message.
	ErrNetworkUnavailable = errors.New("network unavailable: check your connection and try again")

	// ErrPlaybackFailed marks all other non-benign engine failures.
	ErrPlaybackFailed = errors.New("playback failed")
)

// isBenignInit reports whether err is the engine's duplicate
// initialization signature, swallowed because a session may issue
// commands before the engine's own initialize has settled.
func isBenignInit(err error) bool {
	return errors.Is(err, engine.ErrAlreadyInitialized)
}

// isNetworkError classifies connectivity failures so they can be
// surfaced with a distinguished message.
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"network", "connection", "timeout", "unreachable", "no route to host"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// wrapPlayError normalizes an engine failure per the error taxonomy:
// network-class failures get the distinguished network mark, everything
// else is wrapped with the original detail preserved and marked as a
// generic playback failure.
func wrapPlayError(err error) error {
	if err == nil {
		return nil
	}
	if isNetworkError(err) {
		return errors.Mark(errors.Wrap(err, "network error during playback"), ErrNetworkUnavailable)
	}
	return errors.Mark(errors.Wrap(err, "failed to play track"), ErrPlaybackFailed)
}
