// package formatter renders backend payloads and outcomes for the terminal
package formatter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/muzee/internal/services"
)

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
}

// NewPalette builds a [Palette] from foreground colors for titles, success, errors, warnings and muted text.
func NewPalette(t, s, e, w, m string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		label: NewBold(m),
		muted: NewEm(m),
	}
}

// DefaultPalette returns the standard muzee colors.
func DefaultPalette() *Palette {
	return NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func (p *Palette) field(b *strings.Builder, name string, value any) {
	fmt.Fprintf(b, "%s %v\n", p.label.Render(name+":"), value)
}

// RenderStatus renders a /status payload: server state, served users, and the profile when logged in.
func (p *Palette) RenderStatus(payload any) string {
	obj, _ := payload.(map[string]any)
	var b strings.Builder

	b.WriteString(p.title.Render("Muzee") + "\n")

	status := stringOr(obj["status"], "unknown")
	if status == "online" {
		p.field(&b, "Status", p.ok.Render(status))
	} else {
		p.field(&b, "Status", p.warn.Render(status))
	}

	if n, ok := obj["served_users"]; ok {
		p.field(&b, "Served users", n)
	}

	logged, _ := obj["is_logged"].(bool)
	if !logged {
		p.field(&b, "Logged in", p.err.Render("✗ no"))
		return b.String()
	}
	p.field(&b, "Logged in", p.ok.Render("✓ yes"))

	if profile, ok := obj["profile"].(map[string]any); ok {
		user := stringOr(profile["username"], "?")
		if id := stringOr(profile["id"], ""); id != "" {
			user += " " + p.muted.Render("("+id+")")
		}
		p.field(&b, "User", user)
		if photo := stringOr(profile["photo"], ""); photo != "" {
			p.field(&b, "Avatar", photo)
		}
	}

	features := stringSlice(obj["enabled_features"])
	if len(features) == 0 {
		p.field(&b, "Features", p.muted.Render("none"))
	} else {
		p.field(&b, "Features", strings.Join(features, ", "))
	}

	return b.String()
}

var featureFields = []struct{ key, name string }{
	{"playlist", "Playlist"},
	{"songs_count", "Songs"},
	{"lat", "Latitude"},
	{"lon", "Longitude"},
	{"scale", "Scale"},
	{"image", "Image"},
}

// RenderFeature renders a feature toggle or /feature_details payload.
func (p *Palette) RenderFeature(name string, payload any) string {
	obj, _ := payload.(map[string]any)
	var b strings.Builder

	b.WriteString(p.title.Render(name) + "\n")

	status := stringOr(obj["status"], "unknown")
	switch status {
	case "ok":
		p.field(&b, "Status", p.ok.Render("✓ enabled"))
	case "disabled":
		p.field(&b, "Status", p.muted.Render("disabled"))
		return b.String()
	default:
		p.field(&b, "Status", p.warn.Render(status))
	}

	for _, f := range featureFields {
		if v, ok := obj[f.key]; ok && v != nil {
			p.field(&b, f.name, v)
		}
	}
	if id := stringOr(obj["playlist"], ""); id != "" {
		p.field(&b, "Open", "https://open.spotify.com/playlist/"+id)
	}

	return b.String()
}

// RenderPlaylist renders a /generate_playlist or /language_filter result.
func (p *Palette) RenderPlaylist(payload any) string {
	obj, _ := payload.(map[string]any)
	var b strings.Builder

	b.WriteString(p.ok.Render("✓ Playlist created") + "\n")
	if name := stringOr(obj["name"], ""); name != "" {
		p.field(&b, "Name", name)
	}
	if n, ok := obj["songs_count"]; ok {
		p.field(&b, "Songs", n)
	}
	if id := stringOr(obj["id"], ""); id != "" {
		p.field(&b, "Open", "https://open.spotify.com/playlist/"+id)
	}
	if img := stringOr(obj["image"], ""); img != "" {
		p.field(&b, "Image", img)
	}
	return b.String()
}

// RenderOutcome renders a one-line summary of a non-success outcome. Success renders as an empty string.
func (p *Palette) RenderOutcome(out *services.Outcome) string {
	if out == nil {
		return p.err.Render("✗ no response") + "\n"
	}

	switch out.Kind {
	case services.Success:
		return ""
	case services.NetworkFailure:
		return fmt.Sprintf("%s %v\n", p.err.Render("✗ network failure:"), out.Err)
	case services.Unauthorized:
		line := p.warn.Render("⚠ not logged in, continue in the browser")
		if out.Err != nil {
			line = fmt.Sprintf("%s %s", p.warn.Render("⚠ not logged in:"), out.Err)
		}
		return line + "\n"
	default:
		line := p.err.Render("✗ " + out.Message)
		if extra := extraKeys(out.Payload); extra != "" {
			line += " " + p.muted.Render(extra)
		}
		return line + "\n"
	}
}

// extraKeys lists the payload keys besides "error", e.g. "(max, min)".
func extraKeys(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	keys := slices.Sorted(maps.Keys(obj))
	keys = slices.DeleteFunc(keys, func(k string) bool { return k == "error" })
	if len(keys) == 0 {
		return ""
	}
	return "(" + strings.Join(keys, ", ") + ")"
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func stringSlice(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
