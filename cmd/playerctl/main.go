// Package main provides a remote-control CLI against a running daemon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/soundbridge/soundbridge/internal/api/remote"
)

var (
	app    = kingpin.New("playerctl", "soundbridge remote control")
	server = app.Flag("server", "Daemon address").Default("http://localhost:8307").String()

	// load command
	loadCmd      = app.Command("load", "Load a playlist from a JSON file")
	loadFile     = loadCmd.Arg("file", "Playlist JSON file").Required().String()
	loadAutoplay = loadCmd.Flag("autoplay", "Start playback after loading").Bool()

	// play command
	playCmd     = app.Command("play", "Play a track from a playlist JSON file")
	playFile    = playCmd.Arg("file", "Playlist JSON file").Required().String()
	playTrackID = playCmd.Arg("track-id", "Track ID to play").Required().String()

	// transport commands
	toggleCmd  = app.Command("toggle", "Toggle play/pause")
	nextCmd    = app.Command("next", "Skip to the next track")
	prevCmd    = app.Command("prev", "Restart or skip to the previous track")
	stopCmd    = app.Command("stop", "Stop playback and clear the queue")
	seekCmd    = app.Command("seek", "Seek within the current track")
	seekPos    = seekCmd.Arg("seconds", "Position in seconds").Required().Float64()
	shuffleCmd = app.Command("shuffle", "Toggle shuffle")
	repeatCmd  = app.Command("repeat", "Cycle repeat mode, or set it explicitly")
	repeatMode = repeatCmd.Arg("mode", "Repeat mode: off, track or queue").String()
	statusCmd  = app.Command("status", "Show what is playing")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := remote.NewClient(http.DefaultClient, *server)
	ctx := context.Background()

	switch command {
	case loadCmd.FullCommand():
		name, tracks := readPlaylist(*loadFile)
		report(client.LoadPlaylist(ctx, &remote.LoadPlaylistRequest{
			Name:     name,
			Tracks:   tracks,
			Autoplay: *loadAutoplay,
		}))
	case playCmd.FullCommand():
		_, tracks := readPlaylist(*playFile)
		target := findTrack(tracks, *playTrackID)
		report(client.PlayTrack(ctx, &remote.PlayTrackRequest{
			Track:  target,
			Tracks: tracks,
		}))
	case toggleCmd.FullCommand():
		report(client.Toggle(ctx))
	case nextCmd.FullCommand():
		report(client.Next(ctx))
	case prevCmd.FullCommand():
		report(client.Previous(ctx))
	case stopCmd.FullCommand():
		report(client.Stop(ctx))
	case seekCmd.FullCommand():
		report(client.Seek(ctx, *seekPos))
	case shuffleCmd.FullCommand():
		report(client.ToggleShuffle(ctx))
	case repeatCmd.FullCommand():
		if *repeatMode != "" {
			report(client.SetRepeat(ctx, *repeatMode))
		} else {
			report(client.ToggleRepeat(ctx))
		}
	case statusCmd.FullCommand():
		status(ctx, client)
	}
}

// playlistFile is the on-disk playlist shape. A bare track array is
// accepted too.
type playlistFile struct {
	Name   string             `json:"name"`
	Tracks []remote.TrackInfo `json:"tracks"`
}

func readPlaylist(path string) (string, []remote.TrackInfo) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}

	var pf playlistFile
	if err := json.Unmarshal(data, &pf); err == nil && len(pf.Tracks) > 0 {
		return pf.Name, pf.Tracks
	}

	var tracks []remote.TrackInfo
	if err := json.Unmarshal(data, &tracks); err != nil {
		fatal(fmt.Errorf("invalid playlist file: %w", err))
	}
	return "", tracks
}

func findTrack(tracks []remote.TrackInfo, id string) remote.TrackInfo {
	for _, t := range tracks {
		if t.ID == id {
			return t
		}
	}
	// Let the daemon report the contract violation.
	return remote.TrackInfo{ID: id}
}

func report(res *remote.StatusResponse, err error) {
	if err != nil {
		fatal(err)
	}
	fmt.Printf("playing=%v shuffled=%v repeat=%s\n", res.IsPlaying, res.IsShuffled, res.RepeatMode)
}

func status(ctx context.Context, client *remote.Client) {
	res, err := client.NowPlaying(ctx)
	if err != nil {
		fatal(err)
	}
	if res.Track == nil {
		fmt.Println("Nothing playing")
		return
	}
	fmt.Printf("%s - %s\n", res.Track.Artist, res.Track.Title)
	fmt.Printf("  playing=%v position=%.0fs duration=%.0fs shuffle=%v repeat=%s\n",
		res.IsPlaying, res.PositionSeconds, res.DurationSeconds, res.IsShuffled, res.RepeatMode)
}

func fatal(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
