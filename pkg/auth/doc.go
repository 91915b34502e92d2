// Package auth provides the authentication gate for labtrack.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// sample service. The middleware injects the resolved identity into the
// request context; every endpoint except login, health, and metrics
// requires a valid identity. All rejection causes (missing, malformed,
// unsigned, expired token) collapse into one generic response so that
// callers cannot probe which part of a credential was wrong.
package auth
