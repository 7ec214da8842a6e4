package attachments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const testTicketID = "TKT-20260102-100000-AAAAAA"

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	return NewManager(root), root
}

func TestListWithoutDirectory(t *testing.T) {
	m, root := newTestManager(t)

	names, err := m.List(testTicketID)
	require.NoError(t, err)
	require.Empty(t, names)

	// listing must not create the ticket directory
	_, statErr := os.Stat(filepath.Join(root, testTicketID))
	require.True(t, os.IsNotExist(statErr))
}

func TestAddListRemove(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Add(testTicketID, "b.txt", []byte("two")))
	require.NoError(t, m.Add(testTicketID, "a.txt", []byte("one")))

	names, err := m.List(testTicketID)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt"}, names)

	require.NoError(t, m.Remove(testTicketID, "a.txt"))
	names, err = m.List(testTicketID)
	require.NoError(t, err)
	require.Equal(t, []string{"b.txt"}, names)

	// removing an absent file is a no-op
	require.NoError(t, m.Remove(testTicketID, "missing.txt"))
}

func TestAddOverwritesExisting(t *testing.T) {
	m, root := newTestManager(t)

	require.NoError(t, m.Add(testTicketID, "note.txt", []byte("v1")))
	require.NoError(t, m.Add(testTicketID, "note.txt", []byte("v2")))

	names, err := m.List(testTicketID)
	require.NoError(t, err)
	require.Equal(t, []string{"note.txt"}, names)

	data, err := os.ReadFile(filepath.Join(root, testTicketID, "note.txt"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestAddRejectsOverCap(t *testing.T) {
	m, root := newTestManager(t)
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		require.NoError(t, m.Add(testTicketID, name, []byte("x")))
	}

	err := m.Add(testTicketID, "e.txt", []byte("x"))
	require.True(t, apperrors.IsCode(err, "CAPACITY_EXCEEDED"))

	// rejected before any byte hits disk
	_, statErr := os.Stat(filepath.Join(root, testTicketID, "e.txt"))
	require.True(t, os.IsNotExist(statErr))

	// overwriting a held name at the cap is still allowed
	require.NoError(t, m.Add(testTicketID, "a.txt", []byte("updated")))
}

func TestRemaining(t *testing.T) {
	m, _ := newTestManager(t)

	remaining, err := m.Remaining(testTicketID)
	require.NoError(t, err)
	require.Equal(t, MaxPerTicket, remaining)

	require.NoError(t, m.Add(testTicketID, "a.txt", []byte("x")))
	remaining, err = m.Remaining(testTicketID)
	require.NoError(t, err)
	require.Equal(t, MaxPerTicket-1, remaining)
}

func TestPaths(t *testing.T) {
	m, root := newTestManager(t)
	require.NoError(t, m.Add(testTicketID, "a.txt", []byte("x")))

	paths, err := m.Paths(testTicketID)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(root, testTicketID, "a.txt")}, paths)
}

func TestUnsafeNamesRejected(t *testing.T) {
	m, _ := newTestManager(t)

	for _, name := range []string{"", ".", "..", "../evil.txt", `sub\evil.txt`, "sub/evil.txt"} {
		err := m.Add(testTicketID, name, []byte("x"))
		require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "name %q must be rejected", name)
	}

	_, err := m.List("../outside")
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
