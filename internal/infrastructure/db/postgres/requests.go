package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baechuer/org-calendar/internal/domain"
)

type RequestRepo struct {
	pool *pgxpool.Pool
}

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo { return &RequestRepo{pool: pool} }

func scanRequest(row scanner) (*domain.EventRequest, error) {
	var (
		r       domain.EventRequest
		format  string
		deptIDs *string
		labels  *string
		status  string
	)
	err := row.Scan(
		&r.ID, &r.OrganizerID, &r.Title, &r.DateStart, &r.DateEnd,
		&r.TimeStart, &r.TimeEnd, &r.Place, &format, &r.DepartmentID,
		&deptIDs, &labels, &r.LimitParticipants, &r.Description,
		&r.PostLink, &r.RegLink, &r.ResponsibleLink, &r.Repeat, &status,
		&r.Comments, &r.RevisionSnapshot, &r.HasConflict, &r.EventID,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	r.Format = domain.EventFormat(format)
	r.DepartmentIDs = decodeIDList(deptIDs)
	r.Labels = decodeStrList(labels)
	r.Status = domain.RequestStatus(status)
	if !r.Status.Valid() {
		return nil, domain.ErrInvalidState("invalid request status in db")
	}
	return &r, nil
}

func insertRequestArgs(r *domain.EventRequest, eventID *int64) []any {
	args := []any{r.OrganizerID}
	args = append(args, eventFieldArgs(r.EventFields)...)
	return append(args, string(r.Status), r.HasConflict, eventID, r.CreatedAt)
}

func (p *RequestRepo) Create(ctx context.Context, r *domain.EventRequest) error {
	return p.pool.QueryRow(ctx, insertRequestSQL, insertRequestArgs(r, nil)...).Scan(&r.ID)
}

// CreateApproved writes the request and its materialized event as one unit.
// Admin-authored requests take this path and never pass through moderation.
func (p *RequestRepo) CreateApproved(ctx context.Context, r *domain.EventRequest) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eventID, err := insertEventTx(ctx, tx, r.EventFields, nil)
	if err != nil {
		return 0, err
	}
	if err := tx.QueryRow(ctx, insertRequestSQL, insertRequestArgs(r, &eventID)...).Scan(&r.ID); err != nil {
		return 0, err
	}
	// backlink now that the request id exists
	if _, err := tx.Exec(ctx, `UPDATE events SET request_id = $2 WHERE id = $1`, eventID, r.ID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return eventID, nil
}

func insertEventTx(ctx context.Context, tx pgx.Tx, f domain.EventFields, requestID *int64) (int64, error) {
	args := append(eventFieldArgs(f), string(domain.EventPlanned), requestID)
	var id int64
	if err := tx.QueryRow(ctx, insertEventSQL, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *RequestRepo) GetByID(ctx context.Context, id int64) (*domain.EventRequest, error) {
	return scanRequest(p.pool.QueryRow(ctx, getRequestSQL, id))
}

func (p *RequestRepo) Head(ctx context.Context, id int64) (*domain.RequestHead, error) {
	var h domain.RequestHead
	var status string
	err := p.pool.QueryRow(ctx, requestHeadSQL, id).Scan(&h.ID, &h.OrganizerID, &status, &h.EventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	h.Status = domain.RequestStatus(status)
	return &h, nil
}

func (p *RequestRepo) Save(ctx context.Context, r *domain.EventRequest) error {
	args := []any{r.ID}
	args = append(args, eventFieldArgs(r.EventFields)...)
	args = append(args, string(r.Status), r.HasConflict, r.UpdatedAt)
	tag, err := p.pool.Exec(ctx, saveRequestSQL, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("request not found")
	}
	return nil
}

func (p *RequestRepo) SetStatus(ctx context.Context, id int64, status domain.RequestStatus, comments *string, snapshot json.RawMessage) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE event_requests
		SET status = $2,
		    comments = COALESCE($3, comments),
		    revision_snapshot = COALESCE($4, revision_snapshot),
		    updated_at = NOW()
		WHERE id = $1
	`, id, string(status), comments, snapshot)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("request not found")
	}
	return nil
}

// ApproveAndMaterialize locks the request, then either updates the already
// linked event in place or creates a fresh one and backfills event_id. One
// transaction, so a crash can never leave an approved request without its
// event.
func (p *RequestRepo) ApproveAndMaterialize(ctx context.Context, id int64, comments *string, f domain.EventFields) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var linked *int64
	err = tx.QueryRow(ctx, `SELECT event_id FROM event_requests WHERE id = $1 FOR UPDATE`, id).Scan(&linked)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound("request not found")
	}
	if err != nil {
		return 0, err
	}

	var eventID int64
	if linked != nil {
		eventID = *linked
		args := append([]any{eventID}, eventFieldArgs(f)...)
		if _, err := tx.Exec(ctx, updateEventFieldsSQL, args...); err != nil {
			return 0, err
		}
	} else {
		eventID, err = insertEventTx(ctx, tx, f, &id)
		if err != nil {
			return 0, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE event_requests
		SET status = $2,
		    comments = COALESCE($3, comments),
		    event_id = $4,
		    updated_at = NOW()
		WHERE id = $1
	`, id, string(domain.RequestApproved), comments, eventID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return eventID, nil
}

// RemoveCascade unlinks and deletes the request and, when one is linked, the
// event with its subscriptions and change logs. The unlink happens first so
// the event row never points at a dead request mid-transaction.
func (p *RequestRepo) RemoveCascade(ctx context.Context, id int64) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var linked *int64
	err = tx.QueryRow(ctx, `SELECT event_id FROM event_requests WHERE id = $1 FOR UPDATE`, id).Scan(&linked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound("request not found")
	}
	if err != nil {
		return err
	}

	if linked != nil {
		if _, err := tx.Exec(ctx, `UPDATE events SET request_id = NULL WHERE id = $1`, *linked); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM event_requests WHERE id = $1`, id); err != nil {
		return err
	}
	if linked != nil {
		if err := deleteEventCascadeTx(ctx, tx, *linked); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (p *RequestRepo) List(ctx context.Context, organizerID *int64) ([]*domain.EventRequest, error) {
	rows, err := p.pool.Query(ctx, listRequestsSQL, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.EventRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *RequestRepo) PendingCount(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, pendingCountSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
