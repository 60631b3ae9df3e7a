// Package client talks to the DID Auth API over HTTP/JSON.
//
// # Overview
//
// The package provides:
//  1. The Client interface: GetChallenge, Verify, Me, Ping and the campaign
//     endpoints.
//  2. HTTPClient, its implementation. Responses are decoded into explicit
//     contracts and checked for the fields callers rely on; anything else is
//     reported as ErrProtocol.
//  3. AuthorizedClient, an http.Client wrapper that attaches the stored
//     session token, refuses to send a request when there is no usable
//     session, and clears the session when the server answers 401.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are returned as
// *APIError, which carries the server's detail text and matches ErrProtocol.
// Session problems are reported with the sentinels of the common package:
// ErrNotAuthenticated, ErrSessionExpired and ErrSessionRejected.
package client
