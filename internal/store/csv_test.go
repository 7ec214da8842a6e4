package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newTestStore(t *testing.T) (TicketStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickets.csv")
	return NewCSVStore(path), path
}

func sampleTicket(id, email, empID, department, concern string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		TicketID:      id,
		EmployeeEmail: email,
		EmployeeName:  "Test User",
		EmployeeRole:  "Engineer",
		EmployeeID:    empID,
		Department:    department,
		Concern:       concern,
		Description:   "Something, with a comma\nand a newline",
		Status:        status,
		CreatedAt:     "2026-01-02T10:00:00",
		ClosedAt:      "",
		LastUpdatedBy: email,
	}
}

func TestLoadMissingFileIsEmptyTable(t *testing.T) {
	s, _ := newTestStore(t)
	tickets, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, tickets)
}

func TestAppendAndLoad(t *testing.T) {
	s, path := newTestStore(t)
	ticket := sampleTicket("TKT-20260102-100000-AAAAAA", "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen)
	require.NoError(t, s.Append(context.Background(), ticket))

	tickets, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, ticket, tickets[0])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), strings.Join(domain.Columns(), ",")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	original := []domain.Ticket{
		sampleTicket("TKT-20260102-100000-AAAAAA", "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen),
		sampleTicket("TKT-20260102-110000-BBBBBB", "b@co.com", "B2", "HR", "Payroll", domain.TicketStatusClosed),
	}
	require.NoError(t, s.Save(ctx, original))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, loaded))

	again, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, original, again)
}

func TestLoadRejectsHeaderMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,foo\n"), 0o644))

	_, err := NewCSVStore(path).Load(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "IO_ERROR"))
}

func TestUpdateFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	ticket := sampleTicket("TKT-20260102-100000-AAAAAA", "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen)
	require.NoError(t, s.Append(ctx, ticket))

	closed := domain.TicketStatusClosed
	closedAt := "2026-01-03T09:00:00"
	updatedBy := "staff@co.com"
	updated, err := s.UpdateFields(ctx, ticket.TicketID, FieldUpdates{
		Status:        &closed,
		ClosedAt:      &closedAt,
		LastUpdatedBy: &updatedBy,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.Equal(t, closedAt, updated.ClosedAt)
	require.Equal(t, updatedBy, updated.LastUpdatedBy)

	// immutable columns untouched
	require.Equal(t, ticket.Description, updated.Description)
	require.Equal(t, ticket.CreatedAt, updated.CreatedAt)

	tickets, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, *updated, tickets[0])
}

func TestUpdateFieldsUnknownTicket(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, sampleTicket("TKT-20260102-100000-AAAAAA", "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen)))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	closed := domain.TicketStatusClosed
	_, err = s.UpdateFields(ctx, "TKT-00000000-000000-FFFFFF", FieldUpdates{Status: &closed})
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, before, after, "failed update must not rewrite the table")
}

func TestFilter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	rows := []domain.Ticket{
		sampleTicket("TKT-1", "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen),
		sampleTicket("TKT-2", "b@co.com", "B2", "IT Support", "Access", domain.TicketStatusClosed),
		sampleTicket("TKT-3", "c@co.com", "C3", "HR", "Payroll", domain.TicketStatusOpen),
	}
	require.NoError(t, s.Save(ctx, rows))

	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no filters", FilterOptions{}, []string{"TKT-1", "TKT-2", "TKT-3"}},
		{"all sentinels", FilterOptions{Status: FilterAll, EmployeeID: FilterAll}, []string{"TKT-1", "TKT-2", "TKT-3"}},
		{"status", FilterOptions{Status: "Open"}, []string{"TKT-1", "TKT-3"}},
		{"department substring is case-insensitive", FilterOptions{Department: "it"}, []string{"TKT-1", "TKT-2"}},
		{"employee id", FilterOptions{EmployeeID: "B2"}, []string{"TKT-2"}},
		{"email", FilterOptions{Email: "c@co.com"}, []string{"TKT-3"}},
		{"composed", FilterOptions{Status: "Open", Department: "IT"}, []string{"TKT-1"}},
		{"composed no match", FilterOptions{Status: "Closed", Department: "HR"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Filter(ctx, tt.opts)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, ticket := range got {
				ids = append(ids, ticket.TicketID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterOrderIndependent(t *testing.T) {
	tickets := []domain.Ticket{
		sampleTicket("TKT-1", "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen),
		sampleTicket("TKT-2", "b@co.com", "B2", "IT Support", "Access", domain.TicketStatusClosed),
		sampleTicket("TKT-3", "c@co.com", "C3", "HR", "Payroll", domain.TicketStatusOpen),
	}

	byStatus := FilterOptions{Status: "Open"}
	byDept := FilterOptions{Department: "it"}
	combined := FilterOptions{Status: "Open", Department: "it"}

	sequential := func(first, second FilterOptions) []domain.Ticket {
		out := []domain.Ticket{}
		for _, t := range tickets {
			if first.Match(t) && second.Match(t) {
				out = append(out, t)
			}
		}
		return out
	}
	combinedOut := []domain.Ticket{}
	for _, ticket := range tickets {
		if combined.Match(ticket) {
			combinedOut = append(combinedOut, ticket)
		}
	}

	require.Equal(t, combinedOut, sequential(byStatus, byDept))
	require.Equal(t, combinedOut, sequential(byDept, byStatus))
}

func TestConcurrentAppendLosesNoRows(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("TKT-20260102-10000%d-AAAAA%d", i, i)
			_ = s.Append(ctx, sampleTicket(id, "a@co.com", "A1", "IT", "Laptop issue", domain.TicketStatusOpen))
		}(i)
	}
	wg.Wait()

	tickets, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, writers)
}
