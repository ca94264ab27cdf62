// Package session holds the client-side session context: the persisted token, the post-login return path,
// and the advisory "disable all" signal raised while a login redirect is in progress.
//
// # Storage
//
// Persisted values live in a [Store], a small string key-value interface. [SQLiteStore] keeps them in the
// kv_store table so they survive between CLI invocations. [MemoryStore] is the ephemeral variant used in tests.
//
// # Session
//
// [Session] wraps a Store with accessors for the two well-known keys: the token key (configurable, "muzeeToken"
// by default) and "after_path". The disabled flag is process-local and never persisted.
//
// [Session.Disable] is a compare-and-swap, so the redirect flow can use it as a reentrancy guard: only the caller
// that flips the flag starts a redirect. The flag does not block requests.
package session
