package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const ticketColumnsSQL = `ticket_id, employee_email, employee_name, employee_role, employee_id,
       department, concern, description, status, created_at, closed_at, last_updated_by`

// postgresStore implements TicketStore on a pgx pool. The table mirrors the
// flat-file layout (all text columns) with a serial sequence preserving
// insertion order, so Load and Save stay row-for-row equivalent to the CSV
// backend.
type postgresStore struct {
	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgresStore builds a TicketStore backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) TicketStore {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Load(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY seq`, ticketColumnsSQL)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewIOError("load ticket table", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (s *postgresStore) Save(ctx context.Context, tickets []domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewIOError("begin save", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE tickets RESTART IDENTITY`); err != nil {
		return apperrors.NewIOError("clear ticket table", err)
	}
	for _, t := range tickets {
		if err := insertTicket(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewIOError("commit save", err)
	}
	return nil
}

func (s *postgresStore) Append(ctx context.Context, ticket domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertTicket(ctx, s.pool, ticket)
}

func (s *postgresStore) UpdateFields(ctx context.Context, ticketID string, updates FieldUpdates) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets := []string{}
	args := []any{}
	if updates.Status != nil {
		args = append(args, string(*updates.Status))
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if updates.ClosedAt != nil {
		args = append(args, *updates.ClosedAt)
		sets = append(sets, fmt.Sprintf("closed_at=$%d", len(args)))
	}
	if updates.LastUpdatedBy != nil {
		args = append(args, *updates.LastUpdatedBy)
		sets = append(sets, fmt.Sprintf("last_updated_by=$%d", len(args)))
	}
	if len(sets) == 0 {
		return s.getByID(ctx, ticketID)
	}

	args = append(args, ticketID)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE ticket_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumnsSQL)

	ticket, err := scanTicketRow(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, apperrors.NewIOError("update ticket", err)
	}
	return ticket, nil
}

func (s *postgresStore) Filter(ctx context.Context, opts FilterOptions) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if opts.Status != "" && opts.Status != FilterAll {
		args = append(args, opts.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if opts.Department != "" {
		args = append(args, "%"+opts.Department+"%")
		clauses = append(clauses, fmt.Sprintf("department ILIKE $%d", len(args)))
	}
	if opts.EmployeeID != "" && opts.EmployeeID != FilterAll {
		args = append(args, opts.EmployeeID)
		clauses = append(clauses, fmt.Sprintf("employee_id=$%d", len(args)))
	}
	if opts.Email != "" {
		args = append(args, opts.Email)
		clauses = append(clauses, fmt.Sprintf("employee_email=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY seq`,
		ticketColumnsSQL, strings.Join(clauses, " AND "))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewIOError("filter tickets", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (s *postgresStore) getByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_id=$1 ORDER BY seq LIMIT 1`, ticketColumnsSQL)
	ticket, err := scanTicketRow(s.pool.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, apperrors.NewIOError("get ticket", err)
	}
	return ticket, nil
}

// pgxExecer is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertTicket(ctx context.Context, db pgxExecer, t domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, employee_email, employee_name, employee_role, employee_id,
                             department, concern, description, status, created_at, closed_at, last_updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	rec := t.Record()
	args := make([]any, len(rec))
	for i, v := range rec {
		args[i] = v
	}
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return apperrors.NewIOError("insert ticket", err)
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, apperrors.NewIOError("scan ticket", err)
		}
		result = append(result, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewIOError("read tickets", err)
	}
	return result, nil
}

func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var status string
	if err := row.Scan(
		&t.TicketID,
		&t.EmployeeEmail,
		&t.EmployeeName,
		&t.EmployeeRole,
		&t.EmployeeID,
		&t.Department,
		&t.Concern,
		&t.Description,
		&status,
		&t.CreatedAt,
		&t.ClosedAt,
		&t.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	return &t, nil
}
