package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/muzee/internal/services"
)

func TestRenderStatus(t *testing.T) {
	p := DefaultPalette()

	t.Run("Logged In", func(t *testing.T) {
		out := p.RenderStatus(map[string]any{
			"status":       "online",
			"served_users": float64(42),
			"is_logged":    true,
			"profile": map[string]any{
				"username": "nirush",
				"photo":    "https://i.scdn.co/image/abc",
				"id":       "spotify-id",
			},
			"enabled_features": []any{"daily-smash", "live-weather"},
		})

		for _, want := range []string{"online", "42", "yes", "nirush", "spotify-id", "https://i.scdn.co/image/abc", "daily-smash, live-weather"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("Logged Out", func(t *testing.T) {
		out := p.RenderStatus(map[string]any{"status": "online", "served_users": float64(3), "is_logged": false})

		if !strings.Contains(out, "no") {
			t.Errorf("expected logged out marker, got:\n%s", out)
		}
		if strings.Contains(out, "Features") {
			t.Error("expected no features for logged out user")
		}
	})

	t.Run("Unexpected Payload", func(t *testing.T) {
		if out := p.RenderStatus("nope"); !strings.Contains(out, "unknown") {
			t.Errorf("expected unknown status, got:\n%s", out)
		}
	})
}

func TestRenderFeature(t *testing.T) {
	p := DefaultPalette()

	t.Run("Enabled", func(t *testing.T) {
		out := p.RenderFeature("daily-smash", map[string]any{
			"status":      "ok",
			"playlist":    "37i9dQZF1DX",
			"image":       "https://img",
			"songs_count": float64(25),
		})

		for _, want := range []string{"daily-smash", "enabled", "37i9dQZF1DX", "https://img", "25", "https://open.spotify.com/playlist/37i9dQZF1DX"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		out := p.RenderFeature("live-weather", map[string]any{"status": "disabled", "playlist": "x"})

		if !strings.Contains(out, "disabled") {
			t.Errorf("expected disabled, got:\n%s", out)
		}
		if strings.Contains(out, "Playlist") {
			t.Error("expected no playlist for a disabled feature")
		}
	})

	t.Run("Null Image Is Skipped", func(t *testing.T) {
		out := p.RenderFeature("public-liked", map[string]any{"status": "ok", "image": nil})
		if strings.Contains(out, "Image") {
			t.Errorf("expected no image line, got:\n%s", out)
		}
	})
}

func TestRenderPlaylist(t *testing.T) {
	out := DefaultPalette().RenderPlaylist(map[string]any{
		"id":          "pl1",
		"name":        "Generated #3 - jazz",
		"songs_count": float64(20),
		"image":       nil,
	})

	for _, want := range []string{"Playlist created", "Generated #3 - jazz", "20", "https://open.spotify.com/playlist/pl1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderOutcome(t *testing.T) {
	p := DefaultPalette()

	tc := []struct {
		name string
		out  *services.Outcome
		want string
	}{
		{name: "success", out: &services.Outcome{Kind: services.Success}, want: ""},
		{name: "nil", out: nil, want: "no response"},
		{name: "network", out: &services.Outcome{Kind: services.NetworkFailure, Err: errors.New("dial tcp")}, want: "dial tcp"},
		{name: "unauthorized", out: &services.Outcome{Kind: services.Unauthorized}, want: "browser"},
		{name: "unauthorized with error", out: &services.Outcome{Kind: services.Unauthorized, Err: errors.New("backend down")}, want: "backend down"},
		{
			name: "application",
			out: &services.Outcome{
				Kind:    services.ApplicationError,
				Message: "No songs found",
				Payload: map[string]any{"error": "No songs found", "topic": "x"},
			},
			want: "No songs found",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := p.RenderOutcome(tt.out)
			if tt.want == "" {
				if got != "" {
					t.Errorf("expected empty output, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
		})
	}

	t.Run("Extra Keys", func(t *testing.T) {
		if got := extraKeys(map[string]any{"error": "x", "b": 1, "a": 2}); got != "(a, b)" {
			t.Errorf("expected (a, b), got %q", got)
		}
		if got := extraKeys(map[string]any{"error": "x"}); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
