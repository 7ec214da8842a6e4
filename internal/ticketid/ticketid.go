// Package ticketid produces human-sortable ticket identifiers.
package ticketid

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns an identifier of the form TKT-YYYYMMDD-HHMMSS-XXXXXX where the
// suffix is six uppercase hex characters from a random source. Collision
// resistance comes from the timestamp plus randomness; uniqueness is not
// checked downstream.
func New() string {
	ts := time.Now().Format("20060102-150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "TKT-" + ts + "-" + suffix
}
