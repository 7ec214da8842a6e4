package store

import (
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// csvStore keeps the ticket table in a single header-rowed CSV file. Every
// mutation is a full load-modify-save cycle under the store mutex; saves go
// to a temp file in the same directory and are renamed into place so a crash
// mid-write never leaves a partial table visible.
type csvStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore builds a TicketStore backed by the file at path. The file is
// created on first save; its absence means an empty table.
func NewCSVStore(path string) TicketStore {
	return &csvStore{path: path}
}

func (s *csvStore) Load(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *csvStore) Save(ctx context.Context, tickets []domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(tickets)
}

func (s *csvStore) Append(ctx context.Context, ticket domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets, err := s.loadLocked()
	if err != nil {
		return err
	}
	return s.saveLocked(append(tickets, ticket))
}

func (s *csvStore) UpdateFields(ctx context.Context, ticketID string, updates FieldUpdates) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range tickets {
		if tickets[i].TicketID == ticketID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	updates.apply(&tickets[idx])
	if err := s.saveLocked(tickets); err != nil {
		return nil, err
	}
	updated := tickets[idx]
	return &updated, nil
}

func (s *csvStore) Filter(ctx context.Context, opts FilterOptions) ([]domain.Ticket, error) {
	tickets, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if opts.Match(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (s *csvStore) loadLocked() ([]domain.Ticket, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Ticket{}, nil
	}
	if err != nil {
		return nil, apperrors.NewIOError("open ticket table", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(domain.Columns())
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewIOError("read ticket table", err)
	}
	if len(rows) == 0 {
		return []domain.Ticket{}, nil
	}
	if !slices.Equal(rows[0], domain.Columns()) {
		return nil, apperrors.NewIOError("ticket table header does not match schema", nil)
	}

	tickets := make([]domain.Ticket, 0, len(rows)-1)
	for _, row := range rows[1:] {
		tickets = append(tickets, domain.FromRecord(row))
	}
	return tickets, nil
}

func (s *csvStore) saveLocked(tickets []domain.Ticket) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tickets-*.csv")
	if err != nil {
		return apperrors.NewIOError("create temp ticket table", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(domain.Columns())
	for _, t := range tickets {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write(t.Record())
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return apperrors.NewIOError("write ticket table", writeErr)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.NewIOError("replace ticket table", err)
	}
	return nil
}
