// Package netx contains HTTP helpers shared by the API clients.
package netx

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxDrain bounds how much of an unread body is consumed before closing so
// the underlying connection can be reused.
const maxDrain = 64 << 10

// JoinURL appends path to base, keeping exactly one slash between them and
// preserving any query string already present on path.
func JoinURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// DrainAndClose discards what is left of resp.Body and closes it.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrain)
	_ = resp.Body.Close()
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
