package ticketid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^TKT-\d{8}-\d{6}-[0-9A-F]{6}$`)

func TestNewFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := New()
		require.Regexp(t, idPattern, id)
	}
}

func TestNewDiffers(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := New()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
