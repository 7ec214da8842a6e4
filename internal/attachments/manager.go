// Package attachments stores ticket documents on the local filesystem, one
// directory per ticket, at most MaxPerTicket live files each.
package attachments

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// MaxPerTicket caps the number of live documents per ticket.
const MaxPerTicket = 4

// Manager owns the per-ticket document directories under root. Directories
// are created lazily on first write; files are never expired automatically.
type Manager struct {
	root string
}

// NewManager builds a Manager rooted at root.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// List returns the sorted filenames attached to the ticket. A ticket with no
// directory yet has no attachments.
func (m *Manager) List(ticketID string) ([]string, error) {
	if err := validateName(ticketID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(m.dir(ticketID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, apperrors.NewIOError("list attachments", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Paths returns absolute paths of the ticket's attachments, for mailing.
func (m *Manager) Paths(ticketID string) ([]string, error) {
	names, err := m.List(ticketID)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(m.dir(ticketID), name))
	}
	return paths, nil
}

// Remove deletes the named file. Removing an absent file is a no-op.
func (m *Manager) Remove(ticketID, name string) error {
	if err := validateName(ticketID); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(m.dir(ticketID), name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewIOError("remove attachment", err)
	}
	return nil
}

// Add writes the file, overwriting an existing file of the same name. Adding
// a new name to a ticket already holding MaxPerTicket files fails with
// CAPACITY_EXCEEDED before any byte is written.
func (m *Manager) Add(ticketID, name string, data []byte) error {
	if err := validateName(ticketID); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	existing, err := m.List(ticketID)
	if err != nil {
		return err
	}
	if len(existing) >= MaxPerTicket && !contains(existing, name) {
		return apperrors.NewCapacityExceeded("attachment limit reached", map[string]any{
			"ticket_id": ticketID,
			"limit":     MaxPerTicket,
		})
	}

	dir := m.dir(ticketID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewIOError("create attachment directory", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return apperrors.NewIOError("write attachment", err)
	}
	return nil
}

// Remaining returns how many new files the ticket can still accept.
func (m *Manager) Remaining(ticketID string) (int, error) {
	names, err := m.List(ticketID)
	if err != nil {
		return 0, err
	}
	remaining := MaxPerTicket - len(names)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (m *Manager) dir(ticketID string) string {
	return filepath.Join(m.root, ticketID)
}

func validateName(name string) error {
	if name == "" ||
		name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return apperrors.NewValidationError("invalid file or ticket name", map[string]any{"name": name})
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
