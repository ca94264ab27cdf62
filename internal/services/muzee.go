// Muzee backend endpoints
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muzee/internal/session"
	"github.com/desertthunder/muzee/internal/shared"
)

const unauthorizedSentinel = "unauthorized"

// ProbeStatus is the result of [MuzeeAPI.RedirectToLogin].
type ProbeStatus string

const (
	StatusUp   ProbeStatus = "up"
	StatusDown ProbeStatus = "down"
)

// MuzeeOptions configures a [MuzeeAPI].
type MuzeeOptions struct {
	HTTPClient *http.Client
	Session    *session.Session
	Navigator  Navigator
	Logger     *log.Logger
	// Timezone returns the IANA zone sent in the Timezone header. Defaults to [shared.LocalTimezone].
	Timezone func() string
}

// MuzeeAPI is the domain client: a [Client] with the Timezone pre-send hook, the JSON post-receive hook,
// and one method per backend endpoint.
type MuzeeAPI struct {
	client   *Client
	logger   *log.Logger
	timezone func() string
}

// NewMuzeeAPI creates a new [MuzeeAPI] for the backend at baseURL.
func NewMuzeeAPI(baseURL string, opts MuzeeOptions) *MuzeeAPI {
	if opts.Timezone == nil {
		opts.Timezone = shared.LocalTimezone
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	api := &MuzeeAPI{logger: opts.Logger, timezone: opts.Timezone}
	api.client = NewClient(baseURL, ClientOptions{
		HTTPClient:   opts.HTTPClient,
		Session:      opts.Session,
		Navigator:    opts.Navigator,
		Logger:       opts.Logger,
		BeforeSend:   api.beforeSend,
		AfterReceive: api.afterReceive,
	})
	return api
}

// Root returns the underlying [Client], with both hooks installed.
func (m *MuzeeAPI) Root() *Client { return m.client }

// Session returns the session context.
func (m *MuzeeAPI) Session() *session.Session { return m.client.session }

func (m *MuzeeAPI) beforeSend(_ context.Context, req *Request) {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Timezone", m.timezone())
}

// afterReceive parses the body as JSON. The unauthorized sentinel clears the token and starts the login redirect.
func (m *MuzeeAPI) afterReceive(ctx context.Context, out *Outcome) *Outcome {
	if out.Kind != Success || out.Response == nil {
		return out
	}

	if !out.Response.IsJSON {
		return &Outcome{
			Kind:     ApplicationError,
			Response: out.Response,
			Message:  "invalid JSON response",
			Err:      fmt.Errorf("%w: status %d", shared.ErrInvalidResponse, out.Response.StatusCode),
		}
	}

	payload := out.Response.JSONData
	obj, _ := payload.(map[string]any)
	errValue, hasErr := obj["error"]
	if !hasErr || errValue == nil {
		return &Outcome{Kind: Success, Response: out.Response, Payload: payload}
	}

	if errValue == unauthorizedSentinel {
		m.logger.Info("session rejected by backend, redirecting to login")
		if err := m.client.session.ClearToken(ctx); err != nil {
			m.logger.Warn("failed to clear token", "error", err)
		}

		status, err := m.RedirectToLogin(ctx)
		if err == nil && status == StatusDown {
			err = shared.ErrServiceUnavailable
		}
		return &Outcome{Kind: Unauthorized, Err: err}
	}

	return &Outcome{
		Kind:     ApplicationError,
		Response: out.Response,
		Payload:  payload,
		Message:  fmt.Sprint(errValue),
	}
}

// RedirectToLogin checks that the backend is alive and then navigates straight to /oauth2/connect.
//
// An unreachable /health reports [StatusDown] without navigating. Any response counts as up.
func (m *MuzeeAPI) RedirectToLogin(ctx context.Context) (ProbeStatus, error) {
	c := m.client

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return StatusDown, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		m.logger.Warn("backend is down", "error", err)
		return StatusDown, nil
	}
	resp.Body.Close()

	url := c.baseURL + connectPath
	if err := c.navigator.Navigate(ctx, url); err != nil {
		return StatusUp, fmt.Errorf("%w: %v", shared.ErrRedirectFailed, err)
	}

	m.logger.Info("redirected to login", "url", url)
	return StatusUp, nil
}

// Status fetches server status and, when logged in, the user's profile and enabled features.
func (m *MuzeeAPI) Status(ctx context.Context) *Outcome {
	return m.client.Get(ctx, "/status")
}

// GeneratePlaylist asks the backend to build a playlist around a topic.
func (m *MuzeeAPI) GeneratePlaylist(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/generate_playlist", data)
}

// ToggleDailySmash enables or reconfigures the daily smash playlist.
func (m *MuzeeAPI) ToggleDailySmash(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/toggle_daily_smash", data)
}

// FeatureDetails fetches the state of a single feature.
func (m *MuzeeAPI) FeatureDetails(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/feature_details", data)
}

// LanguageFilter filters a playlist down to tracks whose titles use the kept characters.
func (m *MuzeeAPI) LanguageFilter(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/language_filter", data)
}

// TogglePublicLiked toggles the public mirror of liked songs.
func (m *MuzeeAPI) TogglePublicLiked(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/toggle_public_liked", data)
}

// ToggleLiveWeather toggles the weather-driven playlist.
func (m *MuzeeAPI) ToggleLiveWeather(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/toggle_live_weather", data)
}

// ToggleLikedArchive toggles the liked songs archive.
func (m *MuzeeAPI) ToggleLikedArchive(ctx context.Context, data any) *Outcome {
	return m.client.Post(ctx, "/toggle_liked_archive", data)
}

// Feature keys accepted by /feature_details.
const (
	FeatureDailySmash   = "daily-smash"
	FeaturePublicLiked  = "public-liked"
	FeatureLiveWeather  = "live-weather"
	FeatureLikedArchive = "liked-archive"
)

// GeneratePlaylistData is the /generate_playlist body. Topic may hold up to five comma-separated topics.
type GeneratePlaylistData struct {
	Topic      string `json:"topic"`
	SongsCount int    `json:"songs_count"`
}

// DailySmashData is the /toggle_daily_smash body. UpdateAt is minutes after local midnight.
type DailySmashData struct {
	Enabled    bool `json:"enabled"`
	UpdateAt   int  `json:"update_at"`
	SongsCount int  `json:"songs_count"`
}

// FeatureKey is the /feature_details body.
type FeatureKey struct {
	Key string `json:"key"`
}

// LanguageFilterData is the /language_filter body. Playlist is an ID or open.spotify.com URL.
type LanguageFilterData struct {
	Playlist  string `json:"playlist"`
	KeepChars string `json:"keep_chars"`
}

// ToggleData is the body of the plain on/off toggles.
type ToggleData struct {
	Enabled bool `json:"enabled"`
}

// LiveWeatherData is the /toggle_live_weather body. Scale is celcius, fahrenheit or kelvin.
type LiveWeatherData struct {
	Enabled  bool    `json:"enabled"`
	Playlist string  `json:"playlist"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Scale    string  `json:"scale"`
}

// Playlist is the result of /generate_playlist and /language_filter.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SongsCount int    `json:"songs_count"`
	Image      string `json:"image"`
}

// DecodePayload re-decodes an outcome payload into v.
func DecodePayload(out *Outcome, v any) error {
	if out == nil || out.Response == nil {
		return fmt.Errorf("%w: no response body", shared.ErrInvalidResponse)
	}
	if err := json.Unmarshal(out.Response.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}
	return nil
}
