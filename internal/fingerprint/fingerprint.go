// Package fingerprint derives a soft, spoofable pseudo-identity from request
// metadata. It is a deterrent against casual duplicate voting, not an
// authentication mechanism: anyone who controls their headers controls their
// fingerprint.
package fingerprint

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
)

// BotSentinel is the reserved creator identity for bubbles inserted by the
// bot importer. It never matches a request-derived fingerprint, so imported
// bubbles cannot be self-voted.
const BotSentinel = "bot"

// Metadata carries the request fields a fingerprint is derived from.
// Missing fields are fine; they simply contribute the empty string.
type Metadata struct {
	RemoteAddr     string
	UserAgent      string
	AcceptLanguage string
	ClientToken    string
}

// Identify combines the metadata fields and hashes them into a short
// base-36 string. It is deterministic and never fails.
func Identify(m Metadata) string {
	h := fnv.New64a()
	h.Write([]byte(m.RemoteAddr + "-" + m.UserAgent + "-" + m.AcceptLanguage + "-" + m.ClientToken))
	return strconv.FormatUint(h.Sum64(), 36)
}

// FromRequest extracts fingerprint metadata from an HTTP request and returns
// the derived identity. X-Forwarded-For wins over the socket address so
// clients behind the reverse proxy are told apart.
func FromRequest(r *http.Request) string {
	addr := r.Header.Get("X-Forwarded-For")
	if addr == "" {
		addr = r.RemoteAddr
	}
	if addr == "" {
		addr = "unknown"
	}
	// Only the first hop of a forwarded chain identifies the client.
	if i := strings.IndexByte(addr, ','); i >= 0 {
		addr = strings.TrimSpace(addr[:i])
	}

	return Identify(Metadata{
		RemoteAddr:     addr,
		UserAgent:      r.Header.Get("User-Agent"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		ClientToken:    r.Header.Get("X-Client-Fingerprint"),
	})
}
