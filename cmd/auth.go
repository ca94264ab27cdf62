package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/muzee/internal/server"
	"github.com/desertthunder/muzee/internal/services"
	"github.com/desertthunder/muzee/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin probes the backend, opens the Spotify login in the browser and captures the returned token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	noWait := cmd.Bool("no-wait")
	timeout := cmd.Duration("timeout")

	if noWait {
		return r.probe(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := server.NewTokenHandler(r.logger)
	serverErrors, err := r.serveTokenCapture(ctx, handler)
	if err != nil {
		return fmt.Errorf("failed to start token capture server: %w", err)
	}

	if err := r.probe(ctx); err != nil {
		return err
	}

	r.writePlain("→ Waiting for login on http://%s (%s timeout)...\n", r.callbackAddr, timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.TokenResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timer.C:
		r.writeTokenFallback()
		return fmt.Errorf("%w: login timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Err != nil {
		return fmt.Errorf("login failed: %w", result.Err)
	}

	return r.storeToken(ctx, result.Token)
}

// writeTokenFallback explains how to store the token by hand when the backend never redirected to the capture server.
//
// The backend sends the token to its configured website URL, so capture only works when that URL points at [server].
func (r *Runner) writeTokenFallback() {
	r.writePlain("\n⚠ No token reached http://%s.\n", r.callbackAddr)
	r.writePlain("The backend only redirects here when its website_url points at this address.\n")
	r.writePlain("Otherwise copy the token from the website and run one of:\n")
	r.writePlain("  muzee auth token <token>\n")
	r.writePlain("  muzee auth import --curl '<request copied as cURL from DevTools>'\n")
}

// probe runs the health probe and reports whether the browser was sent to the login page.
func (r *Runner) probe(ctx context.Context) error {
	status, err := r.api.RedirectToLogin(ctx)
	if status == services.StatusDown {
		return fmt.Errorf("%w: %s is down", shared.ErrServiceUnavailable, r.api.Root().BaseURL())
	}

	loginURL := r.api.Root().BaseURL() + "/oauth2/connect"
	if err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlain("⚠ Could not open browser automatically.\n")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
		return nil
	}

	r.writePlain("→ Opened %s in your browser\n", loginURL)
	return nil
}

// storeToken saves token, re-enables the session and reports where the user was before the 401.
func (r *Runner) storeToken(ctx context.Context, token string) error {
	sess := r.api.Session()
	if err := sess.SetToken(ctx, token); err != nil {
		return err
	}
	sess.Enable()

	returnPath, err := sess.ConsumeAfterPath(ctx)
	if err != nil {
		r.logger.Warn("failed to read after_path", "error", err)
	}

	if r.history != nil {
		if _, err := r.history.Record(ctx, returnPath); err != nil {
			r.logger.Warn("failed to record login", "error", err)
		}
	}

	r.logger.Info("session token stored")
	r.writePlain("✓ Logged in\n")
	if returnPath != "" && returnPath != "/" {
		r.writePlain("Continue where you left off: %s\n", returnPath)
	}
	return nil
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.api.Session().ClearToken(ctx); err != nil {
		return err
	}
	r.logger.Info("session token removed")
	return r.writePlain("✓ Logged out\n")
}

// AuthToken stores a token copied by hand.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	token := cmd.StringArg("value")
	if token == "" {
		return fmt.Errorf("%w: token value is required", shared.ErrMissingArgument)
	}
	return r.storeToken(ctx, token)
}

// AuthImport lifts the token from a "Copy as cURL" request made by the Muzee website.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var req *shared.CurlRequest
	var err error

	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token := req.Authorization()
	if token == "" {
		return fmt.Errorf("%w: cURL command has no Authorization header", shared.ErrInvalidInput)
	}

	if tz := req.Timezone(); tz != "" && r.config.API.Timezone == "" {
		r.writePlain("Browser timezone: %s (set api.timezone to pin it)\n", tz)
	}

	return r.storeToken(ctx, token)
}

// AuthProbe checks the backend and, when it is up, opens the login page.
func (r *Runner) AuthProbe(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("probing backend", "url", r.api.Root().BaseURL())
	return r.probe(ctx)
}

// AuthHistory shows the most recent captured login.
func (r *Runner) AuthHistory(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: login history needs the database", shared.ErrStorage)
	}

	count, err := r.history.Count(ctx)
	if err != nil {
		return err
	}
	latest, err := r.history.Latest(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Logins: %d\n", count)
	if latest != nil {
		r.writePlain("Last: %s", latest.LoggedInAt.Local().Format(time.RFC1123))
		if latest.ReturnPath != "" {
			r.writePlain(" (from %s)", latest.ReturnPath)
		}
		r.writePlain("\n")
	}
	return nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Muzee session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with Spotify and capture the session token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-wait",
						Usage: "Only open the login page, do not wait for the token",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the login callback",
						Value: 2 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:  "token",
				Usage: "Store a session token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "value"},
				},
				Action: r.AuthToken,
			},
			{
				Name:  "import",
				Usage: "Import the session token from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
			{
				Name:   "probe",
				Usage:  "Check the backend and open the login page",
				Action: r.AuthProbe,
			},
			{
				Name:   "history",
				Usage:  "Show captured logins",
				Action: r.AuthHistory,
			},
		},
	}
}
