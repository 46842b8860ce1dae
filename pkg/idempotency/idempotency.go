package idempotency

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const Header = "Idempotency-Key"

// Key returns the caller-supplied key, or a fresh one when the request has none.
func Key(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get(Header)); k != "" {
		return k
	}
	return uuid.NewString()
}
