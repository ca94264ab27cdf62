// Package server runs the short-lived local HTTP server that captures the Muzee session token.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] uses [http.ServeMux] internally with method filtering.
// [Middleware] wraps handlers in reverse order (last added executes first).
//
// # Token Capture
//
// The backend finishes its Spotify callback by redirecting the browser to the website root with the session
// token in the query string (/?token=...). During `muzee auth login` the website URL points at this server, so
// [TokenHandler] receives that redirect, hands the token to the CLI through a channel and renders a page telling
// the user to return to the terminal.
//
// Only the first callback is processed. Later hits get 400.
//
// # Handler Interface
//
// Custom handlers implement [Handler], which adds Routes to [http.Handler] so a handler registers its own paths.
package server
