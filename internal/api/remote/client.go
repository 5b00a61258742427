package remote

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// Client calls the remote service of a running daemon.
type Client struct {
	loadPlaylist  *connect.Client[LoadPlaylistRequest, StatusResponse]
	playTrack     *connect.Client[PlayTrackRequest, StatusResponse]
	toggle        *connect.Client[CommandRequest, StatusResponse]
	next          *connect.Client[CommandRequest, StatusResponse]
	previous      *connect.Client[CommandRequest, StatusResponse]
	seek          *connect.Client[SeekRequest, StatusResponse]
	stop          *connect.Client[CommandRequest, StatusResponse]
	toggleShuffle *connect.Client[CommandRequest, StatusResponse]
	toggleRepeat  *connect.Client[CommandRequest, StatusResponse]
	setRepeat     *connect.Client[RepeatRequest, StatusResponse]
	nowPlaying    *connect.Client[NowPlayingRequest, NowPlayingResponse]
}

// NewClient creates a client against the daemon's base URL.
func NewClient(httpClient *http.Client, baseURL string, opts ...connect.ClientOption) *Client {
	opts = append(opts, connect.WithCodec(jsonCodec{}))

	return &Client{
		loadPlaylist:  connect.NewClient[LoadPlaylistRequest, StatusResponse](httpClient, baseURL+ProcedureLoadPlaylist, opts...),
		playTrack:     connect.NewClient[PlayTrackRequest, StatusResponse](httpClient, baseURL+ProcedurePlayTrack, opts...),
		toggle:        connect.NewClient[CommandRequest, StatusResponse](httpClient, baseURL+ProcedureToggle, opts...),
		next:          connect.NewClient[CommandRequest, StatusResponse](httpClient, baseURL+ProcedureNext, opts...),
		previous:      connect.NewClient[CommandRequest, StatusResponse](httpClient, baseURL+ProcedurePrevious, opts...),
		seek:          connect.NewClient[SeekRequest, StatusResponse](httpClient, baseURL+ProcedureSeek, opts...),
		stop:          connect.NewClient[CommandRequest, StatusResponse](httpClient, baseURL+ProcedureStop, opts...),
		toggleShuffle: connect.NewClient[CommandRequest, StatusResponse](httpClient, baseURL+ProcedureToggleShuffle, opts...),
		toggleRepeat:  connect.NewClient[CommandRequest, StatusResponse](httpClient, baseURL+ProcedureToggleRepeat, opts...),
		setRepeat:     connect.NewClient[RepeatRequest, StatusResponse](httpClient, baseURL+ProcedureSetRepeat, opts...),
		nowPlaying:    connect.NewClient[NowPlayingRequest, NowPlayingResponse](httpClient, baseURL+ProcedureNowPlaying, opts...),
	}
}

func (c *Client) LoadPlaylist(ctx context.Context, req *LoadPlaylistRequest) (*StatusResponse, error) {
	res, err := c.loadPlaylist.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) PlayTrack(ctx context.Context, req *PlayTrackRequest) (*StatusResponse, error) {
	res, err := c.playTrack.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) Toggle(ctx context.Context) (*StatusResponse, error) {
	res, err := c.toggle.CallUnary(ctx, connect.NewRequest(&CommandRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) Next(ctx context.Context) (*StatusResponse, error) {
	res, err := c.next.CallUnary(ctx, connect.NewRequest(&CommandRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) Previous(ctx context.Context) (*StatusResponse, error) {
	res, err := c.previous.CallUnary(ctx, connect.NewRequest(&CommandRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) Seek(ctx context.Context, positionSeconds float64) (*StatusResponse, error) {
	res, err := c.seek.CallUnary(ctx, connect.NewRequest(&SeekRequest{PositionSeconds: positionSeconds}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) Stop(ctx context.Context) (*StatusResponse, error) {
	res, err := c.stop.CallUnary(ctx, connect.NewRequest(&CommandRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) ToggleShuffle(ctx context.Context) (*StatusResponse, error) {
	res, err := c.toggleShuffle.CallUnary(ctx, connect.NewRequest(&CommandRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) ToggleRepeat(ctx context.Context) (*StatusResponse, error) {
	res, err := c.toggleRepeat.CallUnary(ctx, connect.NewRequest(&CommandRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) SetRepeat(ctx context.Context, mode string) (*StatusResponse, error) {
	res, err := c.setRepeat.CallUnary(ctx, connect.NewRequest(&RepeatRequest{Mode: mode}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) NowPlaying(ctx context.Context) (*NowPlayingResponse, error) {
	res, err := c.nowPlaying.CallUnary(ctx, connect.NewRequest(&NowPlayingRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
