package engine

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// Transport is the set of playback operations remote-control signals
// (lock screen, headset, remote API) map onto. The orchestrator
// implements it.
type Transport interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	SeekTo(ctx context.Context, pos time.Duration) error
	SkipToNext(ctx context.Context) error
	SkipToPrevious(ctx context.Context) error
}

// remoteSeekPayload is the wire shape of a remote seek signal.
type remoteSeekPayload struct {
	Position float64 `mapstructure:"position"` // seconds
}

// BindRemote subscribes once to the engine's remote events and forwards
// them to the given transport. This is how system-level controls stay
// in sync with in-app state. Returns a disposer.
func BindRemote(a *Adapter, t Transport) func() {
	return a.Subscribe(func(ev Event) {
		ctx := context.Background()

		var err error
		switch ev.Type {
		case EventRemotePlay:
			err = t.Play(ctx)
		case EventRemotePause:
			err = t.Pause(ctx)
		case EventRemoteStop:
			err = t.Stop(ctx)
		case EventRemoteNext:
			err = t.SkipToNext(ctx)
		case EventRemotePrevious:
			err = t.SkipToPrevious(ctx)
		case EventRemoteSeek:
			var p remoteSeekPayload
			if derr := mapstructure.Decode(ev.Payload, &p); derr != nil {
				zlog.Warn().Msgf("engine: bad remote seek payload: %v", derr)
				return
			}
			err = t.SeekTo(ctx, time.Duration(p.Position*float64(time.Second)))
		default:
			return
		}

		if err != nil {
			zlog.Error().Msgf("engine: remote %s failed: %v", ev.Type, err)
		}
	})
}
