package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baechuer/org-calendar/internal/domain"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo { return &EventRepo{pool: pool} }

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*domain.Event, error) {
	var (
		e       domain.Event
		format  string
		deptIDs *string
		labels  *string
		status  string
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.DateStart, &e.DateEnd, &e.TimeStart, &e.TimeEnd,
		&e.Place, &format, &e.DepartmentID, &deptIDs, &labels,
		&e.LimitParticipants, &e.Description, &e.PostLink, &e.RegLink,
		&e.ResponsibleLink, &e.Repeat, &status, &e.RequestID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	e.Format = domain.EventFormat(format)
	e.DepartmentIDs = decodeIDList(deptIDs)
	e.Labels = decodeStrList(labels)
	e.Status = domain.EventStatus(status)
	if !e.Status.Valid() {
		return nil, domain.ErrInvalidState("invalid event status in db")
	}
	return &e, nil
}

// eventFieldArgs matches the column order of insertEventSQL after the leading
// positional slot (title first).
func eventFieldArgs(f domain.EventFields) []any {
	return []any{
		f.Title, f.DateStart, f.DateEnd, f.TimeStart, f.TimeEnd, f.Place,
		string(f.Format), f.DepartmentID, encodeIDList(f.DepartmentIDs),
		encodeStrList(f.Labels), f.LimitParticipants, f.Description,
		f.PostLink, f.RegLink, f.ResponsibleLink, f.Repeat,
	}
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	args := append(eventFieldArgs(e.EventFields), string(e.Status), e.RequestID)
	return r.pool.QueryRow(ctx, insertEventSQL, args...).Scan(&e.ID)
}

func (r *EventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, getEventSQL, id))
}

func (r *EventRepo) UpdateFields(ctx context.Context, id int64, f domain.EventFields) error {
	args := append([]any{id}, eventFieldArgs(f)...)
	tag, err := r.pool.Exec(ctx, updateEventFieldsSQL, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("event not found")
	}
	return nil
}

func (r *EventRepo) ListVisible(ctx context.Context, from, to *time.Time) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, listVisibleEventsSQL, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepo) ConflictCandidates(ctx context.Context, dateStart, dateEnd time.Time) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, conflictCandidatesSQL, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventRepo) ClearRequestLink(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET request_id = NULL, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("event not found")
	}
	return nil
}

// RemoveCascade deletes the event's subscriptions and change logs before the
// row itself, all in one transaction.
func (r *EventRepo) RemoveCascade(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := deleteEventCascadeTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func deleteEventCascadeTx(ctx context.Context, tx pgx.Tx, eventID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM event_change_logs WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("event not found")
	}
	return nil
}
