package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/muzee/internal/services"
	"github.com/desertthunder/muzee/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request through the domain client
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	path = services.NormalizePath(path)
	r.at(path)

	r.logger.Info("GET request", "path", path)
	return r.writeRaw(r.api.Root().Get(ctx, path), cmd.Bool("pretty"))
}

// APIPost makes a direct POST request with a JSON body through the domain client
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if err := shared.ValidateJSON([]byte(data)); err != nil {
		return err
	}
	path = services.NormalizePath(path)
	r.at(path)

	r.logger.Info("POST request", "path", path)
	return r.writeRaw(r.api.Root().Post(ctx, path, json.RawMessage(data)), cmd.Bool("pretty"))
}

// writeRaw prints the backend payload verbatim, including application errors.
func (r *Runner) writeRaw(out *services.Outcome, pretty bool) error {
	switch {
	case out.Kind == services.Success:
		return r.writeJSON(out.Payload, pretty)
	case out.Kind == services.ApplicationError && out.Payload != nil:
		if err := r.writeJSON(out.Payload, pretty); err != nil {
			return err
		}
		return out.Error()
	case out.Kind == services.ApplicationError && out.Response != nil:
		if err := r.writePlain("%s\n", out.Response.Body); err != nil {
			return err
		}
		return out.Error()
	default:
		return r.present(out, false, nil)
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the Muzee backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the JSON payload",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}
