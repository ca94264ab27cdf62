package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/muzee/internal/services"
	"github.com/desertthunder/muzee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Status shows server status and, when logged in, the profile and enabled features.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	r.at("/")
	return r.present(r.api.Status(ctx), cmd.Bool("json"), r.palette.RenderStatus)
}

// PlaylistGenerate builds a playlist around up to five comma-separated topics.
func (r *Runner) PlaylistGenerate(ctx context.Context, cmd *cli.Command) error {
	topic := cmd.String("topic")
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("%w: --topic is required", shared.ErrMissingArgument)
	}
	r.at("/generate")

	r.logger.Info("generating playlist", "topic", topic)
	out := r.api.GeneratePlaylist(ctx, services.GeneratePlaylistData{
		Topic:      topic,
		SongsCount: int(cmd.Int("count")),
	})
	r.logCreated(out)
	return r.present(out, cmd.Bool("json"), r.palette.RenderPlaylist)
}

// FeatureDailySmash enables, reconfigures or disables the daily smash playlist.
func (r *Runner) FeatureDailySmash(ctx context.Context, cmd *cli.Command) error {
	updateAt, err := parseClock(cmd.String("update-at"))
	if err != nil {
		return err
	}
	r.at("/feature/" + services.FeatureDailySmash)

	out := r.api.ToggleDailySmash(ctx, services.DailySmashData{
		Enabled:    !cmd.Bool("disable"),
		UpdateAt:   updateAt,
		SongsCount: int(cmd.Int("songs")),
	})
	return r.presentFeature(out, services.FeatureDailySmash, cmd)
}

// FeatureDetails shows the state of a single feature.
func (r *Runner) FeatureDetails(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	switch key {
	case services.FeatureDailySmash, services.FeaturePublicLiked, services.FeatureLiveWeather, services.FeatureLikedArchive:
	case "":
		return fmt.Errorf("%w: feature key is required", shared.ErrMissingArgument)
	default:
		return fmt.Errorf("%w: unknown feature %q", shared.ErrInvalidArgument, key)
	}
	r.at("/feature/" + key)

	out := r.api.FeatureDetails(ctx, services.FeatureKey{Key: key})
	return r.presentFeature(out, key, cmd)
}

// FeatureLanguageFilter copies a playlist, keeping tracks whose titles use the given characters.
func (r *Runner) FeatureLanguageFilter(ctx context.Context, cmd *cli.Command) error {
	playlist := cmd.String("playlist")
	if playlist == "" {
		return fmt.Errorf("%w: --playlist is required", shared.ErrMissingArgument)
	}
	r.at("/feature/language-filter")

	out := r.api.LanguageFilter(ctx, services.LanguageFilterData{
		Playlist:  playlist,
		KeepChars: cmd.String("keep"),
	})
	r.logCreated(out)
	return r.present(out, cmd.Bool("json"), r.palette.RenderPlaylist)
}

// FeaturePublicLiked toggles the public mirror of liked songs.
func (r *Runner) FeaturePublicLiked(ctx context.Context, cmd *cli.Command) error {
	r.at("/feature/" + services.FeaturePublicLiked)
	out := r.api.TogglePublicLiked(ctx, services.ToggleData{Enabled: !cmd.Bool("disable")})
	return r.presentFeature(out, services.FeaturePublicLiked, cmd)
}

// FeatureLiveWeather toggles the playlist that follows the local weather.
func (r *Runner) FeatureLiveWeather(ctx context.Context, cmd *cli.Command) error {
	r.at("/feature/" + services.FeatureLiveWeather)
	out := r.api.ToggleLiveWeather(ctx, services.LiveWeatherData{
		Enabled:  !cmd.Bool("disable"),
		Playlist: cmd.String("playlist"),
		Lat:      cmd.Float("lat"),
		Lon:      cmd.Float("lon"),
		Scale:    cmd.String("scale"),
	})
	return r.presentFeature(out, services.FeatureLiveWeather, cmd)
}

// FeatureLikedArchive toggles the liked songs archive.
func (r *Runner) FeatureLikedArchive(ctx context.Context, cmd *cli.Command) error {
	r.at("/feature/" + services.FeatureLikedArchive)
	out := r.api.ToggleLikedArchive(ctx, services.ToggleData{Enabled: !cmd.Bool("disable")})
	return r.presentFeature(out, services.FeatureLikedArchive, cmd)
}

// logCreated records the playlist a successful call created.
func (r *Runner) logCreated(out *services.Outcome) {
	if !out.OK() {
		return
	}
	var pl services.Playlist
	if err := services.DecodePayload(out, &pl); err != nil {
		r.logger.Debug("unexpected playlist payload", "error", err)
		return
	}
	r.logger.Info("playlist created", "id", pl.ID, "name", pl.Name, "songs", pl.SongsCount)
}

func (r *Runner) presentFeature(out *services.Outcome, name string, cmd *cli.Command) error {
	return r.present(out, cmd.Bool("json"), func(payload any) string {
		return r.palette.RenderFeature(name, payload)
	})
}

// parseClock converts "HH:MM" to minutes after midnight.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: time must be HH:MM, got %q", shared.ErrInvalidArgument, s)
	}

	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", shared.ErrInvalidArgument, s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", shared.ErrInvalidArgument, s)
	}
	return hours*60 + minutes, nil
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output the raw JSON payload"}
}

func disableFlag() cli.Flag {
	return &cli.BoolFlag{Name: "disable", Usage: "Turn the feature off"}
}

// statusCommand shows backend and session status
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server status and the logged in profile",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Status,
	}
}

// playlistCommand handles playlist generation
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist generation",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a playlist from topics",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "topic",
						Aliases:  []string{"t"},
						Usage:    "Comma-separated topics (up to 5)",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of songs",
						Value:   25,
					},
					jsonFlag(),
				},
				Action: r.PlaylistGenerate,
			},
		},
	}
}

// featureCommand handles the account features
func featureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "feature",
		Aliases: []string{"f"},
		Usage:   "Manage Muzee features",
		Commands: []*cli.Command{
			{
				Name:  services.FeatureDailySmash,
				Usage: "Toggle the daily smash playlist",
				Flags: []cli.Flag{
					disableFlag(),
					&cli.StringFlag{
						Name:  "update-at",
						Usage: "Local time to refresh the playlist (HH:MM)",
						Value: "08:00",
					},
					&cli.IntFlag{
						Name:  "songs",
						Usage: "Number of songs",
						Value: 25,
					},
					jsonFlag(),
				},
				Action: r.FeatureDailySmash,
			},
			{
				Name:  "details",
				Usage: "Show a feature's state",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.FeatureDetails,
			},
			{
				Name:  "language-filter",
				Usage: "Filter a playlist by title characters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Usage:    "Playlist ID or open.spotify.com URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "keep",
						Usage: "Characters a title must use to be kept",
					},
					jsonFlag(),
				},
				Action: r.FeatureLanguageFilter,
			},
			{
				Name:   services.FeaturePublicLiked,
				Usage:  "Toggle the public liked songs playlist",
				Flags:  []cli.Flag{disableFlag(), jsonFlag()},
				Action: r.FeaturePublicLiked,
			},
			{
				Name:  services.FeatureLiveWeather,
				Usage: "Toggle the live weather playlist",
				Flags: []cli.Flag{
					disableFlag(),
					&cli.StringFlag{Name: "playlist", Usage: "Playlist ID to keep in sync"},
					&cli.FloatFlag{Name: "lat", Usage: "Latitude"},
					&cli.FloatFlag{Name: "lon", Usage: "Longitude"},
					&cli.StringFlag{Name: "scale", Usage: "celcius, fahrenheit or kelvin", Value: "celcius"},
					jsonFlag(),
				},
				Action: r.FeatureLiveWeather,
			},
			{
				Name:   services.FeatureLikedArchive,
				Usage:  "Toggle the liked songs archive",
				Flags:  []cli.Flag{disableFlag(), jsonFlag()},
				Action: r.FeatureLikedArchive,
			},
		},
	}
}
