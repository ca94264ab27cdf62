package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/muzee/internal/shared"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Handle Filters Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected 200 pong, got %d %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if got := rec.Header().Get("Allow"); got != http.MethodGet {
			t.Errorf("expected Allow GET, got %q", got)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("Logging Middleware", func(t *testing.T) {
		var buf strings.Builder
		logger := shared.NewLogger(&buf)
		shared.SetLogLevel(logger, log.DebugLevel)

		r := NewBasicRouter()
		r.Use(LoggingMiddleware(logger))
		r.Handle(http.MethodGet, "/ping", http.NotFoundHandler())
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if !strings.Contains(buf.String(), "handled request") {
			t.Errorf("expected request to be logged, got %q", buf.String())
		}
	})
}

func TestTokenHandler(t *testing.T) {
	newRouter := func(h *TokenHandler) *BasicRouter {
		r := NewBasicRouter()
		r.Handler(h)
		return r
	}

	t.Run("Captures Token", func(t *testing.T) {
		h := NewTokenHandler(nil)
		r := newRouter(h)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token=abc123", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Login Successful") {
			t.Error("expected success page")
		}

		result := <-h.Result()
		if result.Err != nil || result.Token != "abc123" {
			t.Errorf("expected token abc123, got %+v", result)
		}
		if _, ok := <-h.Result(); ok {
			t.Error("expected channel to be closed after one result")
		}
	})

	t.Run("Only First Callback Is Accepted", func(t *testing.T) {
		h := NewTokenHandler(nil)
		r := newRouter(h)

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?token=first", nil))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token=second", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on second callback, got %d", rec.Code)
		}

		if result := <-h.Result(); result.Token != "first" {
			t.Errorf("expected first token, got %q", result.Token)
		}
	})

	t.Run("Error Param Fails", func(t *testing.T) {
		h := NewTokenHandler(nil)
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Err)
		}
		if !strings.Contains(result.Err.Error(), "access_denied") {
			t.Errorf("expected error to name access_denied, got %v", result.Err)
		}
	})

	t.Run("Missing Token Fails", func(t *testing.T) {
		h := NewTokenHandler(nil)
		newRouter(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if result := <-h.Result(); !errors.Is(result.Err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Err)
		}
	})

	t.Run("Other Paths Do Not Consume Callback", func(t *testing.T) {
		h := NewTokenHandler(nil)
		r := newRouter(h)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?token=t", nil))
		if result := <-h.Result(); result.Token != "t" {
			t.Errorf("expected token t, got %+v", result)
		}
	})

	t.Run("Token Is Escaped In Page", func(t *testing.T) {
		h := NewTokenHandler(nil)
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?error=%3Cscript%3E", nil))

		if strings.Contains(rec.Body.String(), "<script>") {
			t.Error("expected error text to be escaped")
		}
	})
}

// brokenResponseWriter accepts headers but fails every body write.
type brokenResponseWriter struct {
	*httptest.ResponseRecorder
}

func (brokenResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestTokenHandlerRenderFailure(t *testing.T) {
	var buf strings.Builder
	h := NewTokenHandler(shared.NewLogger(&buf))

	h.ServeHTTP(brokenResponseWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/?token=abc", nil))

	if result := <-h.Result(); result.Token != "abc" {
		t.Errorf("expected token to be delivered despite the write failure, got %+v", result)
	}
	if !strings.Contains(buf.String(), "failed to render page") {
		t.Errorf("expected render failure to be logged, got %q", buf.String())
	}
}

func TestServe(t *testing.T) {
	t.Run("Serves Until Cancelled", func(t *testing.T) {
		h := NewTokenHandler(nil)
		router := NewBasicRouter()
		router.Handler(h)

		ctx, cancel := context.WithCancel(context.Background())
		ready := make(chan string, 1)
		done := make(chan error, 1)
		go func() { done <- Serve(ctx, "127.0.0.1:0", router, ready) }()

		var addr string
		select {
		case addr = <-ready:
		case err := <-done:
			t.Fatalf("server exited early: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not start")
		}

		resp, err := http.Get("http://" + addr + "/?token=live")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if result := <-h.Result(); result.Token != "live" {
			t.Errorf("expected token live, got %+v", result)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("Bad Address", func(t *testing.T) {
		err := Serve(context.Background(), "256.0.0.1:-1", http.NotFoundHandler(), nil)
		if err == nil {
			t.Error("expected listen error")
		}
	})
}
