package remote

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/soundbridge/soundbridge/internal/app/playback"
	"github.com/soundbridge/soundbridge/internal/app/session"
	"github.com/soundbridge/soundbridge/internal/domain/playlist"
	"github.com/soundbridge/soundbridge/internal/domain/track"
	"github.com/soundbridge/soundbridge/internal/engine"
)

// Service implements the remote-control RPC surface over the playback
// session.
type Service struct {
	session *session.Session
	orch    *playback.Orchestrator
}

// NewService creates a new remote service.
func NewService(sess *session.Session, orch *playback.Orchestrator) *Service {
	return &Service{session: sess, orch: orch}
}

// NewHandler mounts all remote procedures on a mux and returns the
// path prefix to serve it under.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))

	mux := http.NewServeMux()
	mux.Handle(ProcedureLoadPlaylist, connect.NewUnaryHandler(ProcedureLoadPlaylist, s.LoadPlaylist, opts...))
	mux.Handle(ProcedurePlayTrack, connect.NewUnaryHandler(ProcedurePlayTrack, s.PlayTrack, opts...))
	mux.Handle(ProcedureToggle, connect.NewUnaryHandler(ProcedureToggle, s.Toggle, opts...))
	mux.Handle(ProcedureNext, connect.NewUnaryHandler(ProcedureNext, s.Next, opts...))
	mux.Handle(ProcedurePrevious, connect.NewUnaryHandler(ProcedurePrevious, s.Previous, opts...))
	mux.Handle(ProcedureSeek, connect.NewUnaryHandler(ProcedureSeek, s.Seek, opts...))
	mux.Handle(ProcedureStop, connect.NewUnaryHandler(ProcedureStop, s.Stop, opts...))
	mux.Handle(ProcedureToggleShuffle, connect.NewUnaryHandler(ProcedureToggleShuffle, s.ToggleShuffle, opts...))
	mux.Handle(ProcedureToggleRepeat, connect.NewUnaryHandler(ProcedureToggleRepeat, s.ToggleRepeat, opts...))
	mux.Handle(ProcedureSetRepeat, connect.NewUnaryHandler(ProcedureSetRepeat, s.SetRepeat, opts...))
	mux.Handle(ProcedureNowPlaying, connect.NewUnaryHandler(ProcedureNowPlaying, s.NowPlaying, opts...))

	return "/soundbridge.remote.v1.RemoteService/", mux
}

// LoadPlaylist adopts a playlist as the active queue.
func (s *Service) LoadPlaylist(
	ctx context.Context,
	req *connect.Request[LoadPlaylistRequest],
) (*connect.Response[StatusResponse], error) {
	pl := playlist.Playlist{Name: req.Msg.Name, Tracks: make([]track.Track, len(req.Msg.Tracks))}
	for i, ti := range req.Msg.Tracks {
		pl.Tracks[i] = ti.ToTrack()
	}
	zlog.Info().Msgf("remote: loading playlist %q: tracks=%d duration=%s",
		pl.Name, len(pl.Tracks), pl.TotalDuration())

	if err := s.session.LoadPlaylist(ctx, pl.Tracks, req.Msg.Autoplay); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// PlayTrack plays a track within a playlist.
func (s *Service) PlayTrack(
	ctx context.Context,
	req *connect.Request[PlayTrackRequest],
) (*connect.Response[StatusResponse], error) {
	tracks := make([]track.Track, len(req.Msg.Tracks))
	for i, ti := range req.Msg.Tracks {
		tracks[i] = ti.ToTrack()
	}
	if err := s.session.PlayTrack(ctx, req.Msg.Track.ToTrack(), tracks); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// Toggle flips play/pause.
func (s *Service) Toggle(
	ctx context.Context,
	_ *connect.Request[CommandRequest],
) (*connect.Response[StatusResponse], error) {
	if err := s.session.TogglePlayback(ctx); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// Next moves to the next track.
func (s *Service) Next(
	ctx context.Context,
	_ *connect.Request[CommandRequest],
) (*connect.Response[StatusResponse], error) {
	if err := s.session.SkipToNext(ctx); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// Previous restarts the current track or moves back.
func (s *Service) Previous(
	ctx context.Context,
	_ *connect.Request[CommandRequest],
) (*connect.Response[StatusResponse], error) {
	if err := s.session.SkipToPrevious(ctx); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// Seek seeks within the current track.
func (s *Service) Seek(
	ctx context.Context,
	req *connect.Request[SeekRequest],
) (*connect.Response[StatusResponse], error) {
	pos := time.Duration(req.Msg.PositionSeconds * float64(time.Second))
	if pos < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("position must not be negative"))
	}
	if err := s.session.SeekTo(ctx, pos); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// Stop stops playback and clears the queue.
func (s *Service) Stop(
	ctx context.Context,
	_ *connect.Request[CommandRequest],
) (*connect.Response[StatusResponse], error) {
	if err := s.session.Stop(ctx); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// ToggleShuffle flips shuffle mode.
func (s *Service) ToggleShuffle(
	ctx context.Context,
	_ *connect.Request[CommandRequest],
) (*connect.Response[StatusResponse], error) {
	if err := s.session.ToggleShuffle(ctx); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// ToggleRepeat cycles the repeat mode.
func (s *Service) ToggleRepeat(
	ctx context.Context,
	_ *connect.Request[CommandRequest],
) (*connect.Response[StatusResponse], error) {
	if err := s.session.ToggleRepeat(ctx); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// SetRepeat sets repeat to an explicit mode.
func (s *Service) SetRepeat(
	ctx context.Context,
	req *connect.Request[RepeatRequest],
) (*connect.Response[StatusResponse], error) {
	mode, err := engine.ParseRepeatMode(req.Msg.Mode)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.session.SetRepeatMode(ctx, mode); err != nil {
		return nil, rpcError(err)
	}
	return connect.NewResponse(s.status()), nil
}

// NowPlaying reports the observable session state.
func (s *Service) NowPlaying(
	ctx context.Context,
	_ *connect.Request[NowPlayingRequest],
) (*connect.Response[NowPlayingResponse], error) {
	snap := s.session.Snapshot()

	pos, err := s.orch.Position(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	dur, err := s.orch.Duration(ctx)
	if err != nil {
		return nil, rpcError(err)
	}

	res := &NowPlayingResponse{
		IsPlaying:       snap.IsPlaying,
		IsShuffled:      snap.IsShuffled,
		RepeatMode:      snap.RepeatMode.String(),
		PositionSeconds: pos.Seconds(),
		DurationSeconds: dur.Seconds(),
	}
	if snap.CurrentTrack != nil {
		ti := TrackInfoFrom(*snap.CurrentTrack)
		res.Track = &ti
	}
	return connect.NewResponse(res), nil
}

func (s *Service) status() *StatusResponse {
	snap := s.session.Snapshot()
	return &StatusResponse{
		IsPlaying:  snap.IsPlaying,
		IsShuffled: snap.IsShuffled,
		RepeatMode: snap.RepeatMode.String(),
	}
}

// rpcError maps playback failures onto Connect error codes.
func rpcError(err error) *connect.Error {
	switch {
	case errors.Is(err, playback.ErrTrackNotInPlaylist):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, playback.ErrNetworkUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
