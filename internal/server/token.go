package server

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muzee/internal/shared"
)

// TokenResult is the outcome of a token capture.
type TokenResult struct {
	Token string
	Err   error
}

// TokenHandler captures the session token the backend hands to the website root after login.
type TokenHandler struct {
	logger  *log.Logger
	results chan TokenResult
	once    sync.Once
	mu      sync.Mutex
	hit     bool
}

// NewTokenHandler creates a [TokenHandler] waiting for a single callback. A nil logger discards output.
func NewTokenHandler(logger *log.Logger) *TokenHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TokenHandler{logger: logger, results: make(chan TokenResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{"/{$}"}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.Send(TokenResult{Err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, e)})
		h.render(w, http.StatusBadRequest, "Login Failed", "The backend reported: "+e)
		return
	}

	token := q.Get("token")
	if token == "" {
		h.Send(TokenResult{Err: fmt.Errorf("%w: callback carried no token", shared.ErrAuthFailed)})
		h.render(w, http.StatusBadRequest, "Login Failed", "No token was received.")
		return
	}

	h.Send(TokenResult{Token: token})
	h.render(w, http.StatusOK, "✓ Login Successful", "You can close this window and return to the terminal.")
}

// Send delivers result on the result channel. Only the first call has any effect.
func (h *TokenHandler) Send(result TokenResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns a channel that receives exactly one [TokenResult] and is then closed.
func (h *TokenHandler) Result() <-chan TokenResult {
	return h.results
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func (h *TokenHandler) render(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, struct{ Title, Message string }{title, message}); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}
