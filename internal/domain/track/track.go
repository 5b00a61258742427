// Package track provides the Track domain entity.
package track

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Track represents a playable unit handed to the playback core by a
// screen or API client. Tracks are immutable from the orchestrator's
// point of view; the engine adapter only creates formatted copies.
type Track struct {
	ID         string        // Unique track ID
	Title      string        // Track title
	Artist     string        // Artist display name
	ArtworkURL string        // Artwork URL (optional)
	Album      string        // Album name (optional)
	Duration   time.Duration // Track duration (0 when unknown)
	StreamURL  string        // Playable source URL
}

// IDs returns the identity sequence of the given tracks, in order.
func IDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

// SameIDSequence reports whether two track lists carry the same IDs in
// the same order.
func SameIDSequence(a, b []Track) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// IndexOf returns the position of the track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// NormalizeDuration converts the loosely-typed duration values found in
// remote metadata into a time.Duration. Accepted inputs are numeric
// seconds (int or float) and "MM:SS" strings. Anything invalid or
// missing normalizes to 0.
func NormalizeDuration(v any) time.Duration {
	switch d := v.(type) {
	case nil:
		return 0
	case time.Duration:
		if d < 0 {
			return 0
		}
		return d
	case int:
		return secondsToDuration(float64(d))
	case int64:
		return secondsToDuration(float64(d))
	case float64:
		return secondsToDuration(d)
	case float32:
		return secondsToDuration(float64(d))
	case string:
		return parseClockString(d)
	default:
		return 0
	}
}

func secondsToDuration(sec float64) time.Duration {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return 0
	}
	return time.Duration(sec * float64(time.Second))
}

// parseClockString parses "MM:SS" (and "H:MM:SS") clock strings. A bare
// numeric string is treated as seconds.
func parseClockString(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		sec, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0
		}
		return secondsToDuration(sec)
	}
	if len(parts) > 3 {
		return 0
	}

	var total float64
	for _, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return secondsToDuration(total)
}
