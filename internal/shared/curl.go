// Utilities for parsing cURL commands.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"|--header\s+'([^']+)'|--header\s+"([^"]+)"`)
	curlURLRegex    = regexp.MustCompile(`'(https?://[^']+)'|"(https?://[^"]+)"|(?:^|\s)(https?://[^\s'"]+)`)
)

// CurlRequest represents the URL and headers parsed from a browser "Copy as cURL" command.
type CurlRequest struct {
	URL     string
	Headers http.Header
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts its URL and headers.
//
// Header names are canonicalized, so lookups through [http.Header.Get] are case-insensitive.
func ParseCurlCommand(curlCmd string) (*CurlRequest, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := http.Header{}
	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers.Set(key, strings.TrimSpace(value))
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	req := &CurlRequest{Headers: headers}
	if m := curlURLRegex.FindStringSubmatch(curlCmd); m != nil {
		req.URL = firstGroup(m)
	}
	return req, nil
}

// Authorization returns the Authorization header value, if any.
func (c *CurlRequest) Authorization() string {
	return c.Headers.Get("Authorization")
}

// Timezone returns the Timezone header value, if any.
func (c *CurlRequest) Timezone() string {
	return c.Headers.Get("Timezone")
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
