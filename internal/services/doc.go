// Package services implements the HTTP client for the Muzee backend.
//
// # Client
//
// [Client] is the request-dispatch wrapper. Every call goes
//
//	BeforeSend hook → transport → status check → AfterReceive hook
//
// and resolves to an [Outcome]. Dispatch never returns a Go error; callers switch on [Outcome.Kind]:
//   - [NetworkFailure] : the transport could not complete (DNS, refused connection, unreadable body)
//   - [ApplicationError] : the backend answered with an "error" field; the payload is kept verbatim
//   - [Success] : a usable payload
//   - [Unauthorized] : the session was rejected and the login redirect was started; never carries data
//
// The session token from [session.Session] is sent as the Authorization header unless the caller set one, and
// Accept is always application/json. There are no retries and no client timeouts.
//
// # Unauthorized Flow
//
// On HTTP 401 the client stores [Navigator.Path] under after_path, raises the session's disabled flag, fetches
// {"redirect_url": ...} from /oauth2/connect and navigates there. Only the call that raised the flag redirects.
//
// # MuzeeAPI
//
// [MuzeeAPI] composes a Client with two hooks: BeforeSend adds the Timezone header, AfterReceive parses JSON and
// turns {"error": "unauthorized"} into a cleared token plus [MuzeeAPI.RedirectToLogin].
//
// RedirectToLogin probes /health and navigates directly to /oauth2/connect, skipping the JSON redirect_url
// indirection used on 401. The two paths are kept as the backend expects them.
package services
